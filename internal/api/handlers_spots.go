package api

import (
	"encoding/json"
	"io"
	"net/http"

	"tidyspot/internal/api/respond"
	"tidyspot/internal/model"
	"tidyspot/internal/service"
)

type spotRequest struct {
	Name              string                `json:"name"`
	CameraEntity      string                `json:"camera_entity"`
	Definition        string                `json:"definition"`
	SpotType          string                `json:"spot_type"`
	Voice             string                `json:"voice"`
	CustomVoicePrompt string                `json:"custom_voice_prompt"`
	Personality       string                `json:"personality"`
	Schedule          []model.ScheduleEntry `json:"schedule"`
}

// CreateSpot POST /api/spots
func (h *Handler) CreateSpot(w http.ResponseWriter, r *http.Request) {
	var req spotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	spot, err := h.deps.Service.CreateSpot(r.Context(), &model.Spot{
		Name:              req.Name,
		CameraEntity:      req.CameraEntity,
		Definition:        req.Definition,
		SpotType:          req.SpotType,
		Voice:             req.Voice,
		CustomVoicePrompt: req.CustomVoicePrompt,
		Personality:       req.Personality,
		Schedule:          req.Schedule,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, spot)
}

// ListSpots GET /api/spots
func (h *Handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	spots, err := h.deps.Service.ListSpots(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"spots": spots, "count": len(spots)})
}

// GetSpot GET /api/spots/{id}
func (h *Handler) GetSpot(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	spot, err := h.deps.Service.GetSpot(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, spot)
}

// UpdateSpot PUT /api/spots/{id}
func (h *Handler) UpdateSpot(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	spot, err := h.deps.Service.GetSpot(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	req := spotRequest{
		Name:              spot.Name,
		CameraEntity:      spot.CameraEntity,
		Definition:        spot.Definition,
		SpotType:          spot.SpotType,
		Voice:             spot.Voice,
		CustomVoicePrompt: spot.CustomVoicePrompt,
		Personality:       spot.Personality,
		Schedule:          spot.Schedule,
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	spot.Name = req.Name
	spot.CameraEntity = req.CameraEntity
	spot.Definition = req.Definition
	spot.SpotType = req.SpotType
	spot.Voice = req.Voice
	spot.CustomVoicePrompt = req.CustomVoicePrompt
	spot.Personality = req.Personality
	spot.Schedule = req.Schedule

	updated, err := h.deps.Service.UpdateSpot(r.Context(), spot)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, updated)
}

// DeleteSpot DELETE /api/spots/{id}
func (h *Handler) DeleteSpot(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.deps.Service.DeleteSpot(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckSpot POST /api/spots/{id}/check
func (h *Handler) CheckSpot(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.deps.Service.CheckSpot(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// CheckSpotPhoto POST /api/spots/{id}/check-photo (multipart "image")
func (h *Handler) CheckSpotPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	image, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	out, err := h.deps.Service.CheckSpotWithImage(r.Context(), id, image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ResetSpot POST /api/spots/{id}/reset (multipart "image")
func (h *Handler) ResetSpot(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	image, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	out, err := h.deps.Service.Reset(r.Context(), id, image)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// SnoozeSpot POST /api/spots/{id}/snooze  {"minutes": N}; N<=0 clears.
func (h *Handler) SnoozeSpot(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Minutes <= 0 {
		if err := h.deps.Service.Unsnooze(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Snooze cancelled"})
		return
	}
	until, err := h.deps.Service.Snooze(r.Context(), id, req.Minutes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Spot snoozed",
		"until":   until,
	})
}

// SetSchedule PUT /api/spots/{id}/schedule
func (h *Handler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	var req struct {
		Schedule []model.ScheduleEntry `json:"schedule"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := h.deps.Service.SetSchedule(r.Context(), id, req.Schedule); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"schedule": req.Schedule})
}

// SpotMemory GET /api/spots/{id}/memory
func (h *Handler) SpotMemory(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	mem, err := h.deps.Service.Memory(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, mem)
}

// GenerateDreamState POST /api/spots/{id}/dream-state
func (h *Handler) GenerateDreamState(w http.ResponseWriter, r *http.Request) {
	id, err := spotID(r)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.deps.Service.GenerateDreamState(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusAccepted, map[string]string{"message": "Generation started"})
}

// readUpload extracts and validates the multipart "image" file.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(service.MaxUploadBytes); err != nil {
		respond.WriteBadRequest(w, "invalid multipart form")
		return nil, false
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respond.WriteBadRequest(w, "missing image file")
		return nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxUploadBytes+1))
	if err != nil {
		respond.WriteBadRequest(w, "failed to read image")
		return nil, false
	}
	if err := service.ValidateUpload(header.Header.Get("Content-Type"), data); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return nil, false
	}
	return data, true
}
