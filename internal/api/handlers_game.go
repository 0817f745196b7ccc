package api

import (
	"net/http"

	"tidyspot/internal/api/respond"
	"tidyspot/internal/settings"
)

// Gamification GET /api/gamification
func (h *Handler) Gamification(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Service.Gamification(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, view)
}

// Challenge GET /api/gamification/challenge
func (h *Handler) Challenge(w http.ResponseWriter, r *http.Request) {
	status, err := h.deps.Service.Challenge(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, status)
}

// CompleteChallenge POST /api/gamification/challenge/complete
func (h *Handler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	status, xp, err := h.deps.Service.CompleteChallenge(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"challenge": status,
		"xp_earned": xp,
	})
}

// WizardStatus GET /api/wizard/status
func (h *Handler) WizardStatus(w http.ResponseWriter, r *http.Request) {
	spots, err := h.deps.Service.ListSpots(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	key, err := h.deps.Settings.Get(r.Context(), settings.KeyGeminiAPIKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	done, err := h.deps.Settings.Get(r.Context(), settings.KeySetupWizardDone)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"has_spots":   len(spots) > 0,
		"has_api_key": key != "",
		"completed":   done == "true",
	})
}

// CompleteWizard POST /api/wizard/complete
func (h *Handler) CompleteWizard(w http.ResponseWriter, r *http.Request) {
	err := h.deps.Settings.Save(r.Context(), map[string]string{
		settings.KeySetupWizardDone: "true",
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Setup complete"})
}

// Health GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Store.HealthPing(r.Context()); err != nil {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
