package dream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	replicateAPIURL   = "https://api.replicate.com/v1/predictions"
	geminiAPIBase     = "https://generativelanguage.googleapis.com/v1beta/models"
	huggingFaceAPIURL = "https://router.huggingface.co/hf/black-forest-labs/FLUX.1-schnell"

	// SDXL img2img keeps the room's structure while restyling it.
	replicateModelVersion = "39ed52f2a78e934b3ba6e2a89f5b1c712de7dfea535525255b1aa35c5565e08b"

	replicatePollInterval = 2 * time.Second
	replicateMaxPolls     = 60
)

// geminiImageModels is tried in order; not every deployment has the
// experimental model enabled.
var geminiImageModels = []string{
	"gemini-2.0-flash-exp",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

var errRateLimited = errors.New("rate limited")

func isRateLimited(err error) bool { return errors.Is(err, errRateLimited) }

// replicate starts an SDXL prediction and polls it to completion.
func (g *Generator) replicate(ctx context.Context, image []byte, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, replicateTimeout)
	defer cancel()

	payload := map[string]interface{}{
		"version": replicateModelVersion,
		"input": map[string]interface{}{
			"image":               "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
			"prompt":              tidyPrompt,
			"prompt_strength":     0.8,
			"num_inference_steps": 30,
			"guidance_scale":      7.5,
		},
	}

	var created struct {
		URLs struct {
			Get string `json:"get"`
		} `json:"urls"`
	}
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(key).
		SetBody(payload).
		SetResult(&created).
		Post(g.replicateURL)
	if err != nil {
		return nil, fmt.Errorf("create prediction: %w", err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, errRateLimited
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("create prediction: status %d", resp.StatusCode())
	}
	if created.URLs.Get == "" {
		return nil, errors.New("prediction has no poll URL")
	}

	for i := 0; i < replicateMaxPolls; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(replicatePollInterval):
		}

		var pred struct {
			Status string          `json:"status"`
			Output json.RawMessage `json:"output"`
			Error  string          `json:"error"`
		}
		resp, err := g.client.R().
			SetContext(ctx).
			SetAuthToken(key).
			SetResult(&pred).
			Get(created.URLs.Get)
		if err != nil {
			return nil, fmt.Errorf("poll prediction: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("poll prediction: status %d", resp.StatusCode())
		}

		switch pred.Status {
		case "succeeded":
			url := firstOutputURL(pred.Output)
			if url == "" {
				return nil, errors.New("prediction succeeded with no output")
			}
			return g.download(ctx, url)
		case "failed":
			if pred.Error == "" {
				pred.Error = "unknown error"
			}
			return nil, fmt.Errorf("prediction failed: %s", pred.Error)
		}
	}
	return nil, errors.New("prediction timed out")
}

// firstOutputURL handles both a bare string and a list of URLs.
func firstOutputURL(raw json.RawMessage) string {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return one
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return ""
}

func (g *Generator) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := g.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("download output: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("download output: status %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// gemini asks a multimodal model to restyle the photo and extracts the
// returned inline image.
func (g *Generator) gemini(ctx context.Context, image []byte, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{{
			"parts": []map[string]interface{}{
				{"text": tidyPrompt},
				{"inline_data": map[string]string{
					"mime_type": "image/jpeg",
					"data":      base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
		"generationConfig": map[string]interface{}{
			"temperature":        0.4,
			"responseModalities": []string{"TEXT", "IMAGE"},
		},
	}

	for _, modelName := range geminiImageModels {
		var result struct {
			Candidates []struct {
				Content struct {
					Parts []struct {
						InlineData struct {
							Data string `json:"data"`
						} `json:"inlineData"`
					} `json:"parts"`
				} `json:"content"`
			} `json:"candidates"`
		}
		url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.geminiBase, modelName, key)
		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(payload).
			SetResult(&result).
			Post(url)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", modelName, err)
		}
		switch {
		case resp.StatusCode() == http.StatusTooManyRequests:
			return nil, errRateLimited
		case resp.StatusCode() == http.StatusNotFound:
			g.log.Warn().Str("model", modelName).Msg("gemini image model not available")
			continue
		case resp.StatusCode() != http.StatusOK:
			g.log.Warn().Str("model", modelName).Int("status", resp.StatusCode()).
				Msg("gemini image request rejected")
			continue
		}

		for _, cand := range result.Candidates {
			for _, part := range cand.Content.Parts {
				if part.InlineData.Data == "" {
					continue
				}
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("decode inline image: %w", err)
				}
				return data, nil
			}
		}
		g.log.Warn().Str("model", modelName).Msg("gemini reply carried no image data")
	}
	return nil, errors.New("no gemini model returned an image")
}

// huggingFace generates text-to-image with FLUX.1-schnell. The input photo
// is not used; the model paints the prompt from scratch.
func (g *Generator) huggingFace(ctx context.Context, _ []byte, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(key).
		SetBody(map[string]string{"inputs": tidyPrompt}).
		Post(g.hfURL)
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusTooManyRequests:
		return nil, errRateLimited
	case http.StatusServiceUnavailable:
		return nil, errors.New("model is loading")
	case http.StatusOK:
		return resp.Body(), nil
	default:
		return nil, fmt.Errorf("inference request: status %d", resp.StatusCode())
	}
}
