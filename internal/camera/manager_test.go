package camera

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"tidyspot/internal/model"
)

type fakeAdapter struct {
	name  string
	calls int
}

func (f *fakeAdapter) Snapshot(ctx context.Context, id string) ([]byte, error) {
	f.calls++
	return []byte(f.name), nil
}

func (f *fakeAdapter) List(ctx context.Context) ([]model.CameraInfo, error) {
	return []model.CameraInfo{{ID: f.name}}, nil
}

func newTestManager() (*Manager, *fakeAdapter, *fakeAdapter, *fakeAdapter, *fakeAdapter) {
	hub := &fakeAdapter{name: "hub"}
	rtsp := &fakeAdapter{name: "rtsp"}
	mjpeg := &fakeAdapter{name: "mjpeg"}
	onvif := &fakeAdapter{name: "onvif"}
	return NewManager(hub, rtsp, mjpeg, onvif, zerolog.Nop()), hub, rtsp, mjpeg, onvif
}

func TestManagerPrefixDispatch(t *testing.T) {
	m, hub, rtsp, mjpeg, onvif := newTestManager()
	ctx := context.Background()

	cases := []struct {
		id   string
		want *fakeAdapter
	}{
		{"camera.kitchen", hub},
		{"rtsp_abc123", rtsp},
		{"mjpeg_xyz", mjpeg},
		{"onvif_front", onvif},
	}
	for _, tc := range cases {
		before := tc.want.calls
		if _, err := m.Snapshot(ctx, tc.id); err != nil {
			t.Fatalf("snapshot %s: %v", tc.id, err)
		}
		if tc.want.calls != before+1 {
			t.Fatalf("%s did not route to %s adapter", tc.id, tc.want.name)
		}
	}
}

func TestManagerUnknownPrefixDefaultsToHub(t *testing.T) {
	m, hub, _, _, _ := newTestManager()

	// Legacy identifiers without any prefix must keep working via the hub.
	if _, err := m.Snapshot(context.Background(), "legacy_entity"); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if hub.calls != 1 {
		t.Fatalf("expected hub to own unrecognized identifiers, calls=%d", hub.calls)
	}
}

func TestManagerEmptyIdentifier(t *testing.T) {
	m, _, _, _, _ := newTestManager()
	_, err := m.Snapshot(context.Background(), "")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestManagerListAggregates(t *testing.T) {
	m, _, _, _, _ := newTestManager()
	cams := m.List(context.Background())
	if len(cams) != 4 {
		t.Fatalf("expected 4 listings, got %d", len(cams))
	}
}

func TestRetryableKinds(t *testing.T) {
	if retryable(newError(KindAuth, "x")) {
		t.Fatalf("auth errors must not be retried")
	}
	if retryable(newError(KindNotFound, "x")) {
		t.Fatalf("not_found errors must not be retried")
	}
	if !retryable(newError(KindTimeout, "x")) {
		t.Fatalf("timeouts are transient")
	}
	if !retryable(newError(KindServerError, "x")) {
		t.Fatalf("server errors are transient")
	}
}
