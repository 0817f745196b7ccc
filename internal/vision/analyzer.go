// Package vision assesses spot photos with the Gemini multimodal API.
// Analyze never fails past its boundary: every outcome, including transport
// and quota errors, comes back as a CheckResult.
package vision

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"tidyspot/internal/memory"
	"tidyspot/internal/model"
	"tidyspot/internal/persona"
	"tidyspot/internal/settings"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Request carries everything the prompt builder needs for one analysis.
type Request struct {
	SpotName          string
	Definition        string
	Voice             string
	CustomVoicePrompt string
	Personality       string
	Memory            *memory.Memory
	LowEnergy         bool
}

// Analyzer calls the vision API. The API key is cached against the settings
// version so saved settings take effect without restarting.
type Analyzer struct {
	settings *settings.Service
	modelID  string
	log      zerolog.Logger
	client   *resty.Client

	mu         sync.Mutex
	cachedKey  string
	keyVersion int64
}

func NewAnalyzer(st *settings.Service, modelID string, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		settings:   st,
		modelID:    modelID,
		log:        log,
		client:     resty.New().SetBaseURL(geminiBaseURL),
		keyVersion: -1,
	}
}

func (a *Analyzer) apiKey(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.settings.Version()
	if a.keyVersion == v {
		return a.cachedKey, nil
	}
	key, err := a.settings.Get(ctx, settings.KeyGeminiAPIKey)
	if err != nil {
		return "", err
	}
	a.cachedKey = key
	a.keyVersion = v
	return key, nil
}

type geminiRequest struct {
	Contents []struct {
		Parts []geminiPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	} `json:"inline_data,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Analyze sends one multimodal request and returns a structured verdict.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, req Request) model.CheckResult {
	key, err := a.apiKey(ctx)
	if err == nil && key == "" {
		return errorResult("Gemini API key not configured. Please configure in Settings.", 0)
	}
	if err != nil {
		return errorResult("Failed to load API key: "+err.Error(), 0)
	}

	voicePrompt := persona.PersonalityPrompt(req.Personality)
	if voicePrompt == "" {
		voicePrompt = persona.VoicePrompt(req.Voice, req.CustomVoicePrompt)
	}
	memoryContext := "First check."
	if req.Memory != nil {
		memoryContext = req.Memory.ContextString()
	}
	prompt := buildPrompt(req.SpotName, req.Definition, voicePrompt, memoryContext, req.LowEnergy)

	var payload geminiRequest
	payload.Contents = make([]struct {
		Parts []geminiPart `json:"parts"`
	}, 1)
	payload.Contents[0].Parts = []geminiPart{
		{Text: prompt},
		{InlineData: &struct {
			MimeType string `json:"mime_type"`
			Data     string `json:"data"`
		}{MimeType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(image)}},
	}
	payload.GenerationConfig.Temperature = 0.4
	payload.GenerationConfig.MaxOutputTokens = 1024

	start := time.Now()
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("key", key).
		SetBody(&payload).
		Post("/models/" + a.modelID + ":generateContent")
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		return errorResult("Network error: "+err.Error(), elapsed)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return errorResult("API quota exceeded. Please try again later.", elapsed)
	}
	if resp.StatusCode() != http.StatusOK {
		body := resp.String()
		if len(body) > 200 {
			body = body[:200]
		}
		return errorResult("API error: "+resp.Status()+" - "+body, elapsed)
	}

	result := parseResponse(resp.Body())
	result.LatencyMs = elapsed

	if req.Memory != nil {
		enrichRecurring(result.ToSort, req.Memory)
	}
	return result
}

// ValidateKey reports whether the configured API key is accepted.
func (a *Analyzer) ValidateKey(ctx context.Context) bool {
	key, err := a.apiKey(ctx)
	if err != nil || key == "" {
		return false
	}
	resp, err := a.client.R().SetContext(ctx).
		SetQueryParam("key", key).Get("/models")
	return err == nil && resp.StatusCode() == http.StatusOK
}

func errorResult(msg string, latencyMs int64) model.CheckResult {
	return model.CheckResult{
		Status:      model.StatusError,
		ToSort:      []model.ToSortItem{},
		LookingGood: []string{},
		Error:       msg,
		LatencyMs:   latencyMs,
	}
}

// enrichRecurring flags items the memory engine has seen repeatedly.
func enrichRecurring(items []model.ToSortItem, m *memory.Memory) {
	for i := range items {
		if n, ok := m.IsRecurring(items[i].Item); ok {
			items[i].Recurring = true
			items[i].SeenCount = n
		}
	}
}
