package vision

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidyspot/internal/memory"
	"tidyspot/internal/model"
	"tidyspot/internal/settings"
	"tidyspot/internal/store/sqlite"
)

func newTestAnalyzer(t *testing.T, handler http.Handler) (*Analyzer, *settings.Service) {
	t.Helper()
	st, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := settings.New(st)
	a := NewAnalyzer(svc, "gemini-2.0-flash", zerolog.Nop())
	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		a.client.SetBaseURL(srv.URL)
	}
	return a, svc
}

func TestAnalyzeWithoutAPIKey(t *testing.T) {
	a, _ := newTestAnalyzer(t, nil)

	res := a.Analyze(context.Background(), []byte("img"), Request{SpotName: "Desk"})
	assert.Equal(t, model.StatusError, res.Status)
	assert.Contains(t, res.Error, "API key not configured")
}

func TestAnalyzeQuotaExceeded(t *testing.T) {
	a, svc := newTestAnalyzer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	require.NoError(t, svc.Save(context.Background(), map[string]string{settings.KeyGeminiAPIKey: "k"}))

	res := a.Analyze(context.Background(), []byte("img"), Request{SpotName: "Desk"})
	assert.Equal(t, model.StatusError, res.Status)
	assert.Contains(t, res.Error, "quota exceeded")
	assert.GreaterOrEqual(t, res.LatencyMs, int64(0))
}

func TestAnalyzeHappyPathEnrichesRecurring(t *testing.T) {
	var gotPrompt string
	a, svc := newTestAnalyzer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotPrompt = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":
			"{\"status\":\"needs_attention\",\"items_out_of_place\":[{\"item\":\"mug\",\"priority\":\"normal\"}],\"looking_good\":[],\"notes\":{\"main\":\"mug again\"}}"
		}]}}]}`))
	}))
	require.NoError(t, svc.Save(context.Background(), map[string]string{settings.KeyGeminiAPIKey: "k"}))

	// Build a memory where "mug" is recurring.
	now := time.Now()
	var checks []*model.Check
	for i := 0; i < 3; i++ {
		checks = append(checks, &model.Check{
			Status:    model.StatusNeedsAttention,
			Timestamp: now.Add(-time.Duration(i+1) * time.Hour),
			ToSort:    []model.ToSortItem{{Item: "Mug"}},
		})
	}
	mem := memory.Calculate(checks, nil)

	res := a.Analyze(context.Background(), []byte("img"), Request{
		SpotName:   "Desk",
		Definition: "short",
		Memory:     mem,
	})
	require.Equal(t, model.StatusNeedsAttention, res.Status)
	require.Len(t, res.ToSort, 1)
	assert.True(t, res.ToSort[0].Recurring)
	assert.Equal(t, 3, res.ToSort[0].SeenCount)

	// The short definition triggers the common-sense directive.
	assert.Contains(t, gotPrompt, "COMMON SENSE")
}

func TestAnalyzeKeyCacheFollowsSettingsVersion(t *testing.T) {
	a, svc := newTestAnalyzer(t, nil)
	ctx := context.Background()

	key, err := a.apiKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", key)

	require.NoError(t, svc.Save(ctx, map[string]string{settings.KeyGeminiAPIKey: "fresh"}))
	key, err = a.apiKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "fresh", key, "saved key must be visible without restart")
}

func TestBuildPromptLowEnergy(t *testing.T) {
	p := buildPrompt("Desk", strings.Repeat("tidy ", 20), "Be direct.", "First check.", true)
	assert.Contains(t, p, "ENERGY NOTE")
	assert.NotContains(t, p, "COMMON SENSE", "long definition skips the common-sense note")
}
