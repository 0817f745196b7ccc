package camera

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tidyspot/internal/model"
)

type fakeCameraStore struct {
	cams map[string]*model.Camera
}

func (f *fakeCameraStore) Create(ctx context.Context, c *model.Camera) (*model.Camera, error) {
	f.cams[c.ID] = c
	return c, nil
}

func (f *fakeCameraStore) Get(ctx context.Context, id string) (*model.Camera, error) {
	c, ok := f.cams[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return c, nil
}

func (f *fakeCameraStore) List(ctx context.Context) ([]*model.Camera, error) {
	out := make([]*model.Camera, 0, len(f.cams))
	for _, c := range f.cams {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCameraStore) Delete(ctx context.Context, id string) error {
	delete(f.cams, id)
	return nil
}

func testFrame() []byte {
	frame := append([]byte{0xFF, 0xD8, 0xFF}, bytes.Repeat([]byte{0x42}, 256)...)
	return append(frame, 0xFF, 0xD9)
}

func mjpegAdapterFor(url string) *MJPEGAdapter {
	cams := &fakeCameraStore{cams: map[string]*model.Camera{
		"mjpeg_porch": {ID: "mjpeg_porch", Name: "Porch", URL: url, CameraType: "mjpeg", Enabled: true},
	}}
	return NewMJPEGAdapter(cams, zerolog.Nop())
}

func TestSnapshotGrabsFirstFrameFromOpenStream(t *testing.T) {
	frame := testFrame()
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n"))
		_, _ = w.Write(frame)
		_, _ = w.Write([]byte("\r\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		// A real camera keeps the stream open; hold the connection until the
		// client hangs up.
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(done)

	a := mjpegAdapterFor(srv.URL)
	start := time.Now()
	got, err := a.Snapshot(context.Background(), "mjpeg_porch")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Fatalf("frame mismatch: got %d bytes, want %d", len(got), len(frame))
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("snapshot took %v; must return on the first complete frame", elapsed)
	}
}

func TestSnapshotPlainImageResponse(t *testing.T) {
	frame := testFrame()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(frame)
	}))
	defer srv.Close()

	a := mjpegAdapterFor(srv.URL)
	got, err := a.Snapshot(context.Background(), "mjpeg_porch")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Fatalf("frame mismatch: %d bytes", len(got))
	}
}

func TestSnapshotRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := mjpegAdapterFor(srv.URL)
	_, err := a.Snapshot(context.Background(), "mjpeg_porch")
	if KindOf(err) != KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestSnapshotUnregisteredCamera(t *testing.T) {
	a := NewMJPEGAdapter(&fakeCameraStore{cams: map[string]*model.Camera{}}, zerolog.Nop())
	_, err := a.Snapshot(context.Background(), "mjpeg_ghost")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestExtractFrameFromMultipart(t *testing.T) {
	frame := append(append([]byte{0xFF, 0xD8, 0xFF}, []byte("imagedata")...), 0xFF, 0xD9)
	stream := append([]byte("--boundary\r\nContent-Type: image/jpeg\r\n\r\n"), frame...)
	stream = append(stream, []byte("\r\n--boundary--")...)

	got, err := extractFrame(stream)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !bytes.Equal(got, frame) {
		t.Fatalf("frame mismatch: %v", got)
	}
}

func TestExtractFrameMissingStart(t *testing.T) {
	_, err := extractFrame([]byte("no jpeg here"))
	if KindOf(err) != KindUnknown {
		t.Fatalf("expected unknown error, got %v", err)
	}
}

func TestExtractFrameIncomplete(t *testing.T) {
	_, err := extractFrame([]byte{0xFF, 0xD8, 0x01, 0x02})
	if err == nil {
		t.Fatalf("expected error for truncated frame")
	}
}

func TestValidImageMagic(t *testing.T) {
	if !validImageMagic([]byte{0xFF, 0xD8, 0xFF, 0xE0}) {
		t.Fatalf("jpeg magic rejected")
	}
	if !validImageMagic([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D}) {
		t.Fatalf("png magic rejected")
	}
	if validImageMagic([]byte("<html>")) {
		t.Fatalf("html accepted as image")
	}
}

func TestClassifyGrabberStderr(t *testing.T) {
	if KindOf(classifyGrabberStderr("method DESCRIBE failed: 401 Unauthorized")) != KindAuth {
		t.Fatalf("401 should map to auth")
	}
	if KindOf(classifyGrabberStderr("Connection refused")) != KindNetwork {
		t.Fatalf("refused should map to network")
	}
	if KindOf(classifyGrabberStderr("something odd")) != KindUnknown {
		t.Fatalf("default should map to unknown")
	}
}
