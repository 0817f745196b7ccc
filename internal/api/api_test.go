package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidyspot/internal/model"
	"tidyspot/internal/service"
	"tidyspot/internal/settings"
	"tidyspot/internal/store"
	"tidyspot/internal/store/sqlite"
	"tidyspot/internal/vision"
)

type fakeCameras struct{}

func (f *fakeCameras) List(ctx context.Context) []model.CameraInfo {
	return []model.CameraInfo{{ID: "camera.desk", Name: "Desk", Live: true}}
}
func (f *fakeCameras) Snapshot(ctx context.Context, id string) ([]byte, error) {
	return bytes.Repeat([]byte{0xFF}, 200), nil
}

type fakeAnalyzer struct {
	result model.CheckResult
	valid  bool
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, image []byte, req vision.Request) model.CheckResult {
	return f.result
}
func (f *fakeAnalyzer) ValidateKey(ctx context.Context) bool { return f.valid }

type fakeDream struct{}

func (f *fakeDream) Generate(ctx context.Context, spotID int64, name string, image []byte) (string, error) {
	return "/dream-states/tidy_x.jpg", nil
}
func (f *fakeDream) InFlight(spotID int64) bool { return false }

type testServer struct {
	srv   *httptest.Server
	store store.Store
	token string
}

func newTestServer(t *testing.T, result model.CheckResult) *testServer {
	t.Helper()
	st, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svcSettings := settings.New(st)
	cams := &fakeCameras{}
	an := &fakeAnalyzer{result: result, valid: true}
	svc := service.New(st, svcSettings, cams, an, &fakeDream{}, zerolog.Nop())

	h := NewHandler(Deps{
		Service:   svc,
		Store:     st,
		Settings:  svcSettings,
		Cameras:   cams,
		Snapshots: cams,
		Analyzer:  an,
		DreamDir:  t.TempDir(),
		Log:       zerolog.Nop(),
	})
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, store: st}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func sortedResult() model.CheckResult {
	return model.CheckResult{
		Status:      model.StatusSorted,
		ToSort:      []model.ToSortItem{},
		LookingGood: []string{"all clear"},
	}
}

func TestHealthOpenWithoutToken(t *testing.T) {
	ts := newTestServer(t, sortedResult())
	resp := ts.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSpotLifecycle(t *testing.T) {
	ts := newTestServer(t, sortedResult())

	resp := ts.do(t, http.MethodPost, "/api/spots", map[string]string{
		"name":          "Desk",
		"definition":    "Surface clear except laptop.",
		"camera_entity": "camera.desk",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var spot model.Spot
	decode(t, resp, &spot)
	assert.Equal(t, "Desk", spot.Name)
	assert.Equal(t, model.StatusUnknown, spot.Status)

	resp = ts.do(t, http.MethodGet, "/api/spots", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Count int `json:"count"`
	}
	decode(t, resp, &listing)
	assert.Equal(t, 1, listing.Count)

	resp = ts.do(t, http.MethodPut, "/api/spots/1", map[string]string{
		"name":       "Desk v2",
		"definition": "Surface clear.",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &spot)
	assert.Equal(t, "Desk v2", spot.Name)

	resp = ts.do(t, http.MethodDelete, "/api/spots/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/spots/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCheckEndpoint(t *testing.T) {
	ts := newTestServer(t, sortedResult())
	resp := ts.do(t, http.MethodPost, "/api/spots", map[string]string{
		"name": "Desk", "definition": "Clear.", "camera_entity": "camera.desk",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/api/spots/1/check", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Check    *model.Check `json:"check"`
		XPEarned int          `json:"xp_earned"`
	}
	decode(t, resp, &out)
	require.NotNil(t, out.Check)
	assert.Equal(t, model.StatusSorted, out.Check.Status)
	assert.Equal(t, 150, out.XPEarned)
}

func TestCheckPhotoMultipart(t *testing.T) {
	ts := newTestServer(t, sortedResult())
	resp := ts.do(t, http.MethodPost, "/api/spots", map[string]string{
		"name": "Desk", "definition": "Clear.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="image"; filename="photo.jpg"`)
	hdr.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0xFF}, 4096))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/spots/1/check-photo", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAuthLifecycle(t *testing.T) {
	ts := newTestServer(t, sortedResult())

	// Bootstrap: no tokens yet, API is open.
	resp := ts.do(t, http.MethodPost, "/api/tokens", map[string]string{"name": "cli"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tok model.APIToken
	decode(t, resp, &tok)
	require.NotEmpty(t, tok.Token)

	// Now requests without a bearer token are rejected.
	resp = ts.do(t, http.MethodGet, "/api/spots", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	// Health stays open.
	resp = ts.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	ts.token = tok.Token
	resp = ts.do(t, http.MethodGet, "/api/spots", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// List must not leak values.
	resp = ts.do(t, http.MethodGet, "/api/tokens", nil)
	var listing struct {
		Tokens []model.APIToken `json:"tokens"`
	}
	decode(t, resp, &listing)
	require.Len(t, listing.Tokens, 1)
	assert.Empty(t, listing.Tokens[0].Token)

	// Revoking the only token reopens the API (no active tokens left).
	resp = ts.do(t, http.MethodDelete, "/api/tokens/"+tok.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_ = resp.Body.Close()

	ts.token = ""
	resp = ts.do(t, http.MethodGet, "/api/spots", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestSettingsSecretsMasked(t *testing.T) {
	ts := newTestServer(t, sortedResult())

	resp := ts.do(t, http.MethodPut, "/api/settings", map[string]string{
		"gemini_api_key": "super-secret",
		"energy_rhythm":  "night_owl",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/settings", nil)
	var got map[string]interface{}
	decode(t, resp, &got)
	assert.Equal(t, true, got["gemini_api_key"], "secret reduced to presence flag")
	assert.Equal(t, "night_owl", got["energy_rhythm"])
}

func TestMetaEndpoints(t *testing.T) {
	ts := newTestServer(t, sortedResult())

	for _, path := range []string{"/api/voices", "/api/personalities", "/api/spot-templates", "/api/cameras"} {
		resp := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		_ = resp.Body.Close()
	}

	resp := ts.do(t, http.MethodGet, "/api/spot-templates/suggest?name=Kitchen+Counter", nil)
	var got map[string]string
	decode(t, resp, &got)
	assert.Equal(t, "kitchen", got["spot_type"])
}

func TestWizardStatus(t *testing.T) {
	ts := newTestServer(t, sortedResult())

	resp := ts.do(t, http.MethodGet, "/api/wizard/status", nil)
	var status map[string]interface{}
	decode(t, resp, &status)
	assert.Equal(t, false, status["has_spots"])
	assert.Equal(t, false, status["completed"])

	resp = ts.do(t, http.MethodPost, "/api/wizard/complete", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/api/wizard/status", nil)
	decode(t, resp, &status)
	assert.Equal(t, true, status["completed"])
}

func TestUploadRejectsWrongType(t *testing.T) {
	ts := newTestServer(t, sortedResult())
	resp := ts.do(t, http.MethodPost, "/api/spots", map[string]string{
		"name": "Desk", "definition": "Clear.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(strings.Repeat("a", 500)))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/spots/1/reset", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}
