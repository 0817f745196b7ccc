package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"tidyspot/internal/api/respond"
	"tidyspot/internal/model"
)

// CreateToken POST /api/tokens {"name": "..."}
// The raw token value is returned once and never again.
func (h *Handler) CreateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respond.WriteBadRequest(w, "token name is required")
		return
	}
	tok, err := h.deps.Store.Tokens().Create(r.Context(), &model.APIToken{Name: req.Name})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, tok)
}

// ListTokens GET /api/tokens. Token values are never echoed back.
func (h *Handler) ListTokens(w http.ResponseWriter, r *http.Request) {
	toks, err := h.deps.Store.Tokens().List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	for _, t := range toks {
		t.Token = ""
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"tokens": toks, "count": len(toks)})
}

// VerifyToken POST /api/tokens/verify {"token": "..."}
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	tok, err := h.deps.Store.Tokens().Verify(r.Context(), req.Token)
	if err != nil {
		respond.WriteJSON(w, http.StatusOK, map[string]bool{"valid": false})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"valid": true, "name": tok.Name})
}

// RevokeToken DELETE /api/tokens/{tokenId}?hard=true deletes instead of
// deactivating.
func (h *Handler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["tokenId"]
	if r.URL.Query().Get("hard") == "true" {
		if err := h.deps.Store.Tokens().Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.deps.Store.Tokens().Revoke(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
