package camera

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"tidyspot/internal/model"
	"tidyspot/internal/settings"
)

const (
	hubSnapshotTimeout = 30 * time.Second
	hubMaxRetries      = 3
)

// HubAdapter fetches frames through the home-automation hub's camera proxy
// endpoint using bearer auth. The resty client caches the configured base
// URL and token; it is rebuilt when the settings version moves.
type HubAdapter struct {
	settings *settings.Service
	log      zerolog.Logger

	mu      sync.Mutex
	client  *resty.Client
	version int64
}

func NewHubAdapter(st *settings.Service, log zerolog.Logger) *HubAdapter {
	return &HubAdapter{settings: st, log: log, version: -1}
}

// httpClient returns a client for the current hub credentials.
func (a *HubAdapter) httpClient(ctx context.Context) (*resty.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := a.settings.Version()
	if a.client != nil && a.version == v {
		return a.client, nil
	}

	base, err := a.settings.Get(ctx, settings.KeyHubBaseURL)
	if err != nil {
		return nil, err
	}
	token, err := a.settings.Get(ctx, settings.KeyHubToken)
	if err != nil {
		return nil, err
	}
	if base == "" {
		return nil, newError(KindOffline, "hub base url not configured")
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetTimeout(hubSnapshotTimeout)
	if token != "" {
		c.SetHeader("Authorization", "Bearer "+token)
	}
	a.client = c
	a.version = v
	return c, nil
}

// Snapshot GETs the camera proxy endpoint, retrying transient failures with
// exponential backoff (1s, 2s, 4s). Auth and not-found failures are final.
func (a *HubAdapter) Snapshot(ctx context.Context, id string) ([]byte, error) {
	client, err := a.httpClient(ctx)
	if err != nil {
		return nil, err
	}

	var img []byte
	op := func() error {
		resp, err := client.R().SetContext(ctx).Get("/api/camera_proxy/" + id)
		if err != nil {
			err := classifyTransportError(err)
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if err := classifyHubStatus(resp.StatusCode(), id); err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		img = resp.Body()
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, hubMaxRetries), ctx)); err != nil {
		return nil, err
	}
	if len(img) == 0 {
		return nil, newError(KindUnknown, "hub returned empty frame for %s", id)
	}
	return img, nil
}

// List pulls hub states and keeps camera entities.
func (a *HubAdapter) List(ctx context.Context) ([]model.CameraInfo, error) {
	client, err := a.httpClient(ctx)
	if err != nil {
		return nil, err
	}

	var states []struct {
		EntityID   string `json:"entity_id"`
		State      string `json:"state"`
		Attributes struct {
			FriendlyName string `json:"friendly_name"`
		} `json:"attributes"`
	}
	resp, err := client.R().SetContext(ctx).SetResult(&states).Get("/api/states")
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if err := classifyHubStatus(resp.StatusCode(), "states"); err != nil {
		return nil, err
	}

	var out []model.CameraInfo
	for _, st := range states {
		if !strings.HasPrefix(st.EntityID, "camera.") {
			continue
		}
		name := st.Attributes.FriendlyName
		if name == "" {
			name = st.EntityID
		}
		out = append(out, model.CameraInfo{
			ID:   st.EntityID,
			Name: name,
			Live: st.State != "unavailable",
		})
	}
	return out, nil
}

func classifyHubStatus(status int, id string) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newError(KindAuth, "hub rejected credentials (HTTP %d)", status)
	case status == http.StatusNotFound:
		return newError(KindNotFound, "camera %s not found on hub", id)
	case status >= 500:
		return newError(KindServerError, "hub error HTTP %d", status)
	default:
		return newError(KindUnknown, "unexpected hub response HTTP %d", status)
	}
}

func classifyTransportError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "context deadline exceeded"),
		strings.Contains(msg, "Client.Timeout"):
		return newError(KindTimeout, "request timed out: %v", err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no route to host"):
		return newError(KindOffline, "host unreachable: %v", err)
	default:
		return newError(KindNetwork, "request failed: %v", err)
	}
}
