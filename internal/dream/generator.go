// Package dream turns a snapshot of a spot into a stylized "tidy preview"
// image via a chain of hosted image-generation providers.
package dream

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tidyspot/internal/model"
	"tidyspot/internal/settings"
)

// tidyPrompt is shared by every provider.
const tidyPrompt = "Transform this photo into a perfectly clean and organized room, " +
	"remove all clutter and loose items from floor and surfaces, " +
	"3D clay render style, cute cartoon aesthetic, smooth matte textures, " +
	"warm golden lighting, blender 3d illustration, minimalist furniture, " +
	"tidy shelves, soft shadows, isometric view"

const (
	providerTimeout  = 120 * time.Second
	replicateTimeout = 180 * time.Second
	maxAttempts      = 3
	minImageBytes    = 100
)

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
)

// Generator runs the provider chain and saves results under the data dir.
// One generation per spot may be in flight at a time.
type Generator struct {
	settings *settings.Service
	dir      string
	log      zerolog.Logger
	client   *resty.Client

	replicateURL string
	geminiBase   string
	hfURL        string

	sleep func(time.Duration)

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func New(svc *settings.Service, dir string, log zerolog.Logger) *Generator {
	return &Generator{
		settings:     svc,
		dir:          dir,
		log:          log,
		client:       resty.New(),
		replicateURL: replicateAPIURL,
		geminiBase:   geminiAPIBase,
		hfURL:        huggingFaceAPIURL,
		sleep:        time.Sleep,
		inFlight:     make(map[int64]struct{}),
	}
}

// InFlight reports whether a generation for the spot is running.
func (g *Generator) InFlight(spotID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inFlight[spotID]
	return ok
}

// Generate produces a tidy-preview image for the spot and returns the URL
// path it is served under. A second call for the same spot while one is
// running fails with model.ErrConflict.
func (g *Generator) Generate(ctx context.Context, spotID int64, spotName string, image []byte) (string, error) {
	g.mu.Lock()
	if _, busy := g.inFlight[spotID]; busy {
		g.mu.Unlock()
		return "", fmt.Errorf("generation already running for spot %d: %w", spotID, model.ErrConflict)
	}
	g.inFlight[spotID] = struct{}{}
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		delete(g.inFlight, spotID)
		g.mu.Unlock()
	}()

	if len(image) < minImageBytes {
		return "", fmt.Errorf("invalid or empty image data: %w", model.ErrValidation)
	}

	providers, err := g.providers(ctx)
	if err != nil {
		return "", err
	}
	if len(providers) == 0 {
		return "", fmt.Errorf("no image generation provider configured: %w", model.ErrValidation)
	}

	var lastErr error
	for _, p := range providers {
		out, err := g.tryProvider(ctx, p, image)
		if err != nil {
			g.log.Warn().Str("provider", p.name).Err(err).Msg("tidy preview provider failed")
			lastErr = fmt.Errorf("%s: %w", p.name, err)
			continue
		}
		if !validImage(out) {
			g.log.Warn().Str("provider", p.name).Msg("provider returned invalid image")
			lastErr = fmt.Errorf("%s returned invalid image", p.name)
			continue
		}
		return g.save(spotName, out)
	}
	return "", fmt.Errorf("all image generation providers failed, last error: %w", lastErr)
}

type provider struct {
	name string
	run  func(ctx context.Context, image []byte, key string) ([]byte, error)
	key  string
}

// providers returns the chain in preference order, skipping providers with
// no configured key.
func (g *Generator) providers(ctx context.Context) ([]provider, error) {
	var out []provider
	for _, cand := range []struct {
		name string
		key  string
		run  func(ctx context.Context, image []byte, key string) ([]byte, error)
	}{
		{"replicate", settings.KeyReplicateAPIToken, g.replicate},
		{"gemini", settings.KeyGeminiAPIKey, g.gemini},
		{"huggingface", settings.KeyHuggingFaceAPIKey, g.huggingFace},
	} {
		key, err := g.settings.Get(ctx, cand.key)
		if err != nil {
			return nil, err
		}
		if key != "" {
			out = append(out, provider{name: cand.name, run: cand.run, key: key})
		}
	}
	return out, nil
}

// tryProvider retries rate-limited calls with 1s/2s/4s waits. Any other
// error moves on to the next provider.
func (g *Generator) tryProvider(ctx context.Context, p provider, image []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := p.run(ctx, image, p.key)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !isRateLimited(err) {
			return nil, err
		}
		wait := time.Duration(1<<attempt) * time.Second
		g.log.Warn().Str("provider", p.name).Dur("wait", wait).Msg("rate limited, backing off")
		g.sleep(wait)
	}
	return nil, lastErr
}

// save writes the image under the dream-state dir and returns its URL path.
func (g *Generator) save(spotName string, image []byte) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create dream-state dir: %w", err)
	}
	filename := fmt.Sprintf("tidy_%s_%s.jpg", safeName(spotName), uuid.NewString()[:8])
	if err := os.WriteFile(filepath.Join(g.dir, filename), image, 0o644); err != nil {
		return "", fmt.Errorf("write dream-state image: %w", err)
	}
	return "/dream-states/" + filename, nil
}

// safeName keeps alphanumerics plus "._- ", maps spaces to underscores and
// caps the result at 30 characters.
func safeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-' || r == ' ':
			b.WriteRune(r)
		}
	}
	s := strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
	if len(s) > 30 {
		s = s[:30]
	}
	return s
}

func validImage(data []byte) bool {
	if len(data) < minImageBytes {
		return false
	}
	return bytes.HasPrefix(data, jpegMagic) || bytes.HasPrefix(data, pngMagic)
}
