package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"tidyspot/internal/api/respond"
	"tidyspot/internal/camera"
	"tidyspot/internal/model"
)

// ListCameras GET /api/cameras
func (h *Handler) ListCameras(w http.ResponseWriter, r *http.Request) {
	cams := h.deps.Cameras.List(r.Context())
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"cameras": cams, "count": len(cams)})
}

// TestCamera POST /api/cameras/{entityId}/test
func (h *Handler) TestCamera(w http.ResponseWriter, r *http.Request) {
	entityID := mux.Vars(r)["entityId"]
	img, err := h.deps.Snapshots.Snapshot(r.Context(), entityID)
	if err != nil {
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"ok":    false,
			"kind":  string(camera.KindOf(err)),
			"error": err.Error(),
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"bytes": len(img),
	})
}

// DiscoverCameras POST /api/cameras/discover
func (h *Handler) DiscoverCameras(w http.ResponseWriter, r *http.Request) {
	if h.deps.Discovery == nil {
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"cameras": []model.CameraInfo{}})
		return
	}
	found, err := h.deps.Discovery.Discover(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"cameras": found, "count": len(found)})
}

// CreateCamera POST /api/cameras
func (h *Handler) CreateCamera(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		URL        string `json:"url"`
		CameraType string `json:"camera_type"`
		Username   string `json:"username"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	cam, err := h.deps.Store.Cameras().Create(r.Context(), &model.Camera{
		Name:       req.Name,
		URL:        req.URL,
		CameraType: req.CameraType,
		Username:   req.Username,
		Password:   req.Password,
		Enabled:    true,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, cam)
}

// ListCustomCameras GET /api/cameras/custom
func (h *Handler) ListCustomCameras(w http.ResponseWriter, r *http.Request) {
	cams, err := h.deps.Store.Cameras().List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"cameras": cams, "count": len(cams)})
}

// DeleteCamera DELETE /api/cameras/{entityId}
func (h *Handler) DeleteCamera(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Store.Cameras().Delete(r.Context(), mux.Vars(r)["entityId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
