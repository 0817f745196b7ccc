// Package api is the HTTP transport: routing, auth and request decoding on
// top of the service layer.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"tidyspot/internal/api/respond"
	"tidyspot/internal/camera"
	"tidyspot/internal/model"
	"tidyspot/internal/service"
	"tidyspot/internal/settings"
	"tidyspot/internal/store"
)

// Discoverer probes the local network for cameras. The ONVIF adapter
// implements it.
type Discoverer interface {
	Discover(ctx context.Context) ([]model.CameraInfo, error)
}

// KeyValidator reports whether the configured vision API key works.
type KeyValidator interface {
	ValidateKey(ctx context.Context) bool
}

// Lister enumerates cameras across all adapters.
type Lister interface {
	List(ctx context.Context) []model.CameraInfo
}

// Deps collects everything the handlers need.
type Deps struct {
	Service    *service.Service
	Store      store.Store
	Settings   *settings.Service
	Cameras    Lister
	Snapshots  service.Snapshotter
	Discovery  Discoverer
	Analyzer   KeyValidator
	DreamDir   string
	Log        zerolog.Logger
}

// Handler carries the dependencies for all route handlers.
type Handler struct {
	deps Deps
}

func NewHandler(deps Deps) *Handler { return &Handler{deps: deps} }

// writeServiceError maps service and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var camErr *camera.Error
	switch {
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		respond.WriteConflict(w, err.Error())
	case errors.As(err, &camErr):
		respond.WriteError(w, http.StatusBadGateway, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}

// spotID extracts the {id} path variable.
func spotID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, errors.New("invalid spot id")
	}
	return id, nil
}
