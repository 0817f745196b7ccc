package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"tidyspot/internal/api/recovery"
)

// NewRouter wires every route behind the recovery, logging and auth
// middleware. Dream-state images are served outside /api and outside auth.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery.Middleware, h.loggingMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.authMiddleware)

	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Bulk routes first so mux does not treat "check-all" as a spot id.
	api.HandleFunc("/spots/check-all", h.CheckAll).Methods(http.MethodPost)
	api.HandleFunc("/spots/reset-all", h.ResetAll).Methods(http.MethodPost)
	api.HandleFunc("/spots/snooze-all", h.SnoozeAll).Methods(http.MethodPost)

	api.HandleFunc("/spots", h.CreateSpot).Methods(http.MethodPost)
	api.HandleFunc("/spots", h.ListSpots).Methods(http.MethodGet)
	api.HandleFunc("/spots/{id:[0-9]+}", h.GetSpot).Methods(http.MethodGet)
	api.HandleFunc("/spots/{id:[0-9]+}", h.UpdateSpot).Methods(http.MethodPut)
	api.HandleFunc("/spots/{id:[0-9]+}", h.DeleteSpot).Methods(http.MethodDelete)
	api.HandleFunc("/spots/{id:[0-9]+}/check", h.CheckSpot).Methods(http.MethodPost)
	api.HandleFunc("/spots/{id:[0-9]+}/check-photo", h.CheckSpotPhoto).Methods(http.MethodPost)
	api.HandleFunc("/spots/{id:[0-9]+}/reset", h.ResetSpot).Methods(http.MethodPost)
	api.HandleFunc("/spots/{id:[0-9]+}/snooze", h.SnoozeSpot).Methods(http.MethodPost)
	api.HandleFunc("/spots/{id:[0-9]+}/schedule", h.SetSchedule).Methods(http.MethodPut)
	api.HandleFunc("/spots/{id:[0-9]+}/memory", h.SpotMemory).Methods(http.MethodGet)
	api.HandleFunc("/spots/{id:[0-9]+}/dream-state", h.GenerateDreamState).Methods(http.MethodPost)

	api.HandleFunc("/spots/{id:[0-9]+}/checks", h.ListChecks).Methods(http.MethodGet)
	api.HandleFunc("/spots/{id:[0-9]+}/checks", h.ClearChecks).Methods(http.MethodDelete)
	api.HandleFunc("/spots/{id:[0-9]+}/checks/{checkId}", h.DeleteCheck).Methods(http.MethodDelete)
	api.HandleFunc("/spots/{id:[0-9]+}/checks/{checkId}/notes", h.UpdateCheckNotes).Methods(http.MethodPatch)
	api.HandleFunc("/spots/{id:[0-9]+}/checks/{checkId}/items/sorted", h.MarkItemsSorted).Methods(http.MethodPost)

	api.HandleFunc("/cameras", h.ListCameras).Methods(http.MethodGet)
	api.HandleFunc("/cameras", h.CreateCamera).Methods(http.MethodPost)
	api.HandleFunc("/cameras/custom", h.ListCustomCameras).Methods(http.MethodGet)
	api.HandleFunc("/cameras/discover", h.DiscoverCameras).Methods(http.MethodPost)
	api.HandleFunc("/cameras/{entityId}/test", h.TestCamera).Methods(http.MethodPost)
	api.HandleFunc("/cameras/{entityId}", h.DeleteCamera).Methods(http.MethodDelete)

	api.HandleFunc("/settings", h.GetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", h.SaveSettings).Methods(http.MethodPut)
	api.HandleFunc("/settings/validate-key", h.ValidateGeminiKey).Methods(http.MethodPost)
	api.HandleFunc("/voices", h.ListVoices).Methods(http.MethodGet)
	api.HandleFunc("/personalities", h.ListPersonalities).Methods(http.MethodGet)
	api.HandleFunc("/spot-templates", h.ListSpotTemplates).Methods(http.MethodGet)
	api.HandleFunc("/spot-templates/suggest", h.SuggestSpotType).Methods(http.MethodGet)

	api.HandleFunc("/tokens", h.CreateToken).Methods(http.MethodPost)
	api.HandleFunc("/tokens", h.ListTokens).Methods(http.MethodGet)
	api.HandleFunc("/tokens/verify", h.VerifyToken).Methods(http.MethodPost)
	api.HandleFunc("/tokens/{tokenId}", h.RevokeToken).Methods(http.MethodDelete)

	api.HandleFunc("/gamification", h.Gamification).Methods(http.MethodGet)
	api.HandleFunc("/gamification/challenge", h.Challenge).Methods(http.MethodGet)
	api.HandleFunc("/gamification/challenge/complete", h.CompleteChallenge).Methods(http.MethodPost)

	api.HandleFunc("/wizard/status", h.WizardStatus).Methods(http.MethodGet)
	api.HandleFunc("/wizard/complete", h.CompleteWizard).Methods(http.MethodPost)

	if h.deps.DreamDir != "" {
		r.PathPrefix("/dream-states/").Handler(http.StripPrefix("/dream-states/",
			http.FileServer(http.Dir(h.deps.DreamDir))))
	}
	return r
}
