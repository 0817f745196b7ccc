package api

import (
	"encoding/json"
	"net/http"

	"tidyspot/internal/api/respond"
	"tidyspot/internal/persona"
	"tidyspot/internal/settings"
)

// secretKeys are masked in GET /api/settings responses.
var secretKeys = map[string]bool{
	settings.KeyGeminiAPIKey:      true,
	settings.KeyHubToken:          true,
	settings.KeyReplicateAPIToken: true,
	settings.KeyHuggingFaceAPIKey: true,
	settings.KeyOnvifPassword:     true,
}

// GetSettings GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.deps.Settings.All(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make(map[string]interface{}, len(all))
	for k, v := range all {
		if secretKeys[k] {
			out[k] = v != ""
			continue
		}
		out[k] = v
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// SaveSettings PUT /api/settings
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.deps.Settings.Save(r.Context(), req); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Settings saved"})
}

// ValidateGeminiKey POST /api/settings/validate-key
func (h *Handler) ValidateGeminiKey(w http.ResponseWriter, r *http.Request) {
	ok := h.deps.Analyzer.ValidateKey(r.Context())
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"valid": ok})
}

// ListVoices GET /api/voices
func (h *Handler) ListVoices(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"voices": persona.Voices})
}

// ListPersonalities GET /api/personalities
func (h *Handler) ListPersonalities(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"personalities": persona.Personalities})
}

// ListSpotTemplates GET /api/spot-templates
func (h *Handler) ListSpotTemplates(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"templates": persona.SpotTemplates})
}

// SuggestSpotType GET /api/spot-templates/suggest?name=&camera=
func (h *Handler) SuggestSpotType(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	suggested := persona.SuggestType(q.Get("name"), q.Get("camera"))
	respond.WriteJSON(w, http.StatusOK, map[string]string{"spot_type": suggested})
}
