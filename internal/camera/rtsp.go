package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tidyspot/internal/model"
	"tidyspot/internal/store"
)

const rtspGrabTimeout = 15 * time.Second

// RTSPAdapter grabs a single frame by shelling out to ffmpeg. One attempt,
// hard timeout, stderr mapped heuristically to error kinds.
type RTSPAdapter struct {
	cameras store.Cameras
	log     zerolog.Logger

	// ffmpegPath is swappable for tests.
	ffmpegPath string
}

func NewRTSPAdapter(cams store.Cameras, log zerolog.Logger) *RTSPAdapter {
	return &RTSPAdapter{cameras: cams, log: log, ffmpegPath: "ffmpeg"}
}

func (a *RTSPAdapter) Snapshot(ctx context.Context, id string) ([]byte, error) {
	cam, err := a.cameras.Get(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, newError(KindNotFound, "camera %s not registered", id)
		}
		return nil, err
	}

	grabCtx, cancel := context.WithTimeout(ctx, rtspGrabTimeout)
	defer cancel()

	cmd := exec.CommandContext(grabCtx, a.ffmpegPath,
		"-rtsp_transport", "tcp",
		"-i", rtspURL(cam),
		"-frames:v", "1",
		"-f", "image2",
		"-loglevel", "error",
		"pipe:1")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if grabCtx.Err() == context.DeadlineExceeded {
			return nil, newError(KindTimeout, "frame grab exceeded %s", rtspGrabTimeout)
		}
		return nil, classifyGrabberStderr(stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, newError(KindUnknown, "frame grabber produced no output")
	}
	return stdout.Bytes(), nil
}

// List returns registered RTSP cameras. Liveness is not probed here; a probe
// would cost a full frame grab per camera.
func (a *RTSPAdapter) List(ctx context.Context) ([]model.CameraInfo, error) {
	return listRegistered(ctx, a.cameras, "rtsp")
}

// rtspURL injects credentials into the stream URL when configured.
func rtspURL(cam *model.Camera) string {
	if cam.Username == "" {
		return cam.URL
	}
	u, err := url.Parse(cam.URL)
	if err != nil {
		return cam.URL
	}
	u.User = url.UserPassword(cam.Username, cam.Password)
	return u.String()
}

func classifyGrabberStderr(stderr string) error {
	switch {
	case strings.Contains(stderr, "401") || strings.Contains(stderr, "Unauthorized"):
		return newError(KindAuth, "stream rejected credentials")
	case strings.Contains(stderr, "Connection refused"):
		return newError(KindNetwork, "stream connection refused")
	default:
		return newError(KindUnknown, "frame grab failed: %s", firstLine(stderr))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	if s == "" {
		return "no diagnostic output"
	}
	return s
}

func listRegistered(ctx context.Context, cams store.Cameras, cameraType string) ([]model.CameraInfo, error) {
	all, err := cams.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.CameraInfo
	for _, c := range all {
		if c.CameraType != cameraType || !c.Enabled {
			continue
		}
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("%s camera %s", cameraType, c.ID)
		}
		out = append(out, model.CameraInfo{ID: c.ID, Name: name, Live: true, URL: c.URL})
	}
	return out, nil
}
