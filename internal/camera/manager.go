package camera

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"tidyspot/internal/model"
)

// Adapter is one snapshot source.
type Adapter interface {
	// Snapshot returns one JPEG frame for the identifier, or a *Error.
	Snapshot(ctx context.Context, id string) ([]byte, error)
	// List returns the cameras this adapter currently knows about.
	List(ctx context.Context) ([]model.CameraInfo, error)
}

// Manager routes camera identifiers to adapters by prefix. Identifiers with
// no recognized prefix go to the home-hub adapter so pre-existing hub entity
// ids keep working.
type Manager struct {
	hub   Adapter
	rtsp  Adapter
	mjpeg Adapter
	onvif Adapter
	log   zerolog.Logger
}

func NewManager(hub, rtsp, mjpeg, onvif Adapter, log zerolog.Logger) *Manager {
	return &Manager{hub: hub, rtsp: rtsp, mjpeg: mjpeg, onvif: onvif, log: log}
}

// adapterFor selects the owning adapter for an identifier.
func (m *Manager) adapterFor(id string) Adapter {
	switch {
	case strings.HasPrefix(id, "rtsp_"):
		return m.rtsp
	case strings.HasPrefix(id, "mjpeg_"):
		return m.mjpeg
	case strings.HasPrefix(id, "onvif_"):
		return m.onvif
	default:
		// Includes the "camera." hub prefix and anything unrecognized.
		return m.hub
	}
}

// Snapshot fetches one frame for the identifier.
func (m *Manager) Snapshot(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, newError(KindNotFound, "no camera configured")
	}
	img, err := m.adapterFor(id).Snapshot(ctx, id)
	if err != nil {
		m.log.Warn().Str("camera", id).Str("kind", string(KindOf(err))).
			Err(err).Msg("snapshot failed")
		return nil, err
	}
	return img, nil
}

// List aggregates camera listings across all adapters. A failing adapter
// contributes nothing rather than failing the whole listing.
func (m *Manager) List(ctx context.Context) []model.CameraInfo {
	var out []model.CameraInfo
	for _, a := range []Adapter{m.hub, m.rtsp, m.mjpeg, m.onvif} {
		if a == nil {
			continue
		}
		cams, err := a.List(ctx)
		if err != nil {
			m.log.Warn().Err(err).Msg("camera listing failed for adapter")
			continue
		}
		out = append(out, cams...)
	}
	return out
}
