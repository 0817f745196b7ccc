package camera

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"tidyspot/internal/model"
	"tidyspot/internal/store"
)

const (
	// mjpegFrameCap bounds how much of a multipart stream is scanned for a
	// single frame.
	mjpegFrameCap = 5 * 1024 * 1024

	mjpegTimeout   = 15 * time.Second
	mjpegChunkSize = 16 * 1024
)

var (
	jpegStart = []byte{0xFF, 0xD8}
	jpegEnd   = []byte{0xFF, 0xD9}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
)

// MJPEGAdapter fetches one frame from a plain HTTP camera. Multipart streams
// are scanned for JPEG frame markers; plain responses are validated by magic
// bytes.
type MJPEGAdapter struct {
	cameras store.Cameras
	log     zerolog.Logger
	client  *resty.Client
}

func NewMJPEGAdapter(cams store.Cameras, log zerolog.Logger) *MJPEGAdapter {
	return &MJPEGAdapter{
		cameras: cams,
		log:     log,
		// A multipart stream never terminates, so the body must be read
		// manually instead of buffered whole by resty.
		client: resty.New().SetTimeout(mjpegTimeout).SetDoNotParseResponse(true),
	}
}

func (a *MJPEGAdapter) Snapshot(ctx context.Context, id string) ([]byte, error) {
	cam, err := a.cameras.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, newError(KindNotFound, "camera %s not registered", id)
		}
		return nil, err
	}

	req := a.client.R().SetContext(ctx)
	if cam.Username != "" {
		req.SetBasicAuth(cam.Username, cam.Password)
	}
	resp, err := req.Get(cam.URL)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	raw := resp.RawBody()
	if raw == nil {
		return nil, newError(KindUnknown, "empty camera response")
	}
	defer func() { _ = raw.Close() }()

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return nil, newError(KindAuth, "camera rejected credentials (HTTP %d)", resp.StatusCode())
	case resp.StatusCode() >= 500:
		return nil, newError(KindServerError, "camera error HTTP %d", resp.StatusCode())
	case resp.StatusCode() != http.StatusOK:
		return nil, newError(KindUnknown, "unexpected camera response HTTP %d", resp.StatusCode())
	}

	if strings.Contains(resp.Header().Get("Content-Type"), "multipart") {
		return readFrame(raw)
	}
	body, err := io.ReadAll(io.LimitReader(raw, mjpegFrameCap))
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if !validImageMagic(body) {
		return nil, newError(KindUnknown, "response is not a JPEG or PNG image")
	}
	return body, nil
}

func (a *MJPEGAdapter) List(ctx context.Context) ([]model.CameraInfo, error) {
	return listRegistered(ctx, a.cameras, "mjpeg")
}

// readFrame reads a multipart stream incrementally and returns the first
// complete JPEG. The stream has no natural end, so the only exits are a
// complete marker pair, the frame cap, or the client timeout.
func readFrame(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, mjpegFrameCap)
	buf := make([]byte, 0, 2*mjpegChunkSize)
	chunk := make([]byte, mjpegChunkSize)
	for {
		n, err := lr.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if frame, ok := findFrame(buf); ok {
				return frame, nil
			}
		}
		if err == io.EOF {
			// Stream closed or cap reached without a full frame; report
			// which marker was missing.
			return extractFrame(buf)
		}
		if err != nil {
			return nil, classifyTransportError(err)
		}
	}
}

// findFrame returns the first complete marker-delimited JPEG in body.
func findFrame(body []byte) ([]byte, bool) {
	start := bytes.Index(body, jpegStart)
	if start < 0 {
		return nil, false
	}
	end := bytes.Index(body[start:], jpegEnd)
	if end < 0 {
		return nil, false
	}
	return body[start : start+end+len(jpegEnd)], true
}

// extractFrame pulls the first complete JPEG out of an already buffered body.
func extractFrame(body []byte) ([]byte, error) {
	if len(body) > mjpegFrameCap {
		body = body[:mjpegFrameCap]
	}
	if frame, ok := findFrame(body); ok {
		return frame, nil
	}
	if !bytes.Contains(body, jpegStart) {
		return nil, newError(KindUnknown, "no JPEG frame start marker within %d bytes", mjpegFrameCap)
	}
	return nil, newError(KindUnknown, "incomplete JPEG frame in stream")
}

func validImageMagic(b []byte) bool {
	return bytes.HasPrefix(b, jpegMagic) || bytes.HasPrefix(b, pngMagic)
}
