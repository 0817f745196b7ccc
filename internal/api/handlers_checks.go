package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tidyspot/internal/api/respond"
)

// ListChecks GET /api/spots/{id}/checks?limit=&offset=
func (h *Handler) ListChecks(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	checks, err := h.deps.Service.ListChecks(r.Context(), id, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"checks": checks, "count": len(checks)})
}

// UpdateCheckNotes PATCH /api/spots/{id}/checks/{checkId}/notes
func (h *Handler) UpdateCheckNotes(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	checkID := mux.Vars(r)["checkId"]
	if err := h.deps.Service.UpdateCheckNotes(r.Context(), id, checkID, req.Notes); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Notes updated"})
}

// MarkItemsSorted POST /api/spots/{id}/checks/{checkId}/items/sorted
func (h *Handler) MarkItemsSorted(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	var req struct {
		Indexes []int `json:"indexes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	checkID := mux.Vars(r)["checkId"]
	out, err := h.deps.Service.MarkItemsSorted(r.Context(), id, checkID, req.Indexes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteCheck DELETE /api/spots/{id}/checks/{checkId}
func (h *Handler) DeleteCheck(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.deps.Service.DeleteCheck(r.Context(), id, mux.Vars(r)["checkId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearChecks DELETE /api/spots/{id}/checks
func (h *Handler) ClearChecks(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	n, err := h.deps.Service.ClearHistory(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"deleted": n})
}

// CheckAll POST /api/spots/check-all
func (h *Handler) CheckAll(w http.ResponseWriter, r *http.Request) {
	outcomes, err := h.deps.Service.CheckAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": outcomes,
		"count":   len(outcomes),
	})
}

// ResetAll POST /api/spots/reset-all
func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.deps.Service.ResetAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"reset": n})
}

// SnoozeAll POST /api/spots/snooze-all {"minutes": N}
func (h *Handler) SnoozeAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Minutes <= 0 {
		respond.WriteBadRequest(w, "minutes must be positive")
		return
	}
	n, err := h.deps.Service.SnoozeAll(r.Context(), req.Minutes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"snoozed": n})
}
