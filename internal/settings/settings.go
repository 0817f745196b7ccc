// Package settings layers environment fallbacks and change tracking over the
// key/value settings table.
package settings

import (
	"context"
	"errors"
	"os"
	"sync/atomic"

	"tidyspot/internal/model"
	"tidyspot/internal/store"
)

// Well-known setting keys.
const (
	KeyGeminiAPIKey       = "gemini_api_key"
	KeyHubBaseURL         = "ha_base_url"
	KeyHubToken           = "ha_token"
	KeyReplicateAPIToken  = "replicate_api_token"
	KeyHuggingFaceAPIKey  = "huggingface_api_key"
	KeyPersonality        = "personality"
	KeyEnergyRhythm       = "energy_rhythm"
	KeyCrashTimes         = "crash_times"
	KeyLowEnergyMode      = "low_energy_mode"
	KeyOnvifUsername      = "onvif_username"
	KeyOnvifPassword      = "onvif_password"
	KeySetupWizardDone    = "setup_wizard_done"
	KeyDreamStateProvider = "dream_state_provider"
)

// envFallbacks maps setting keys to the environment variables consulted when
// the settings table has no value. Order matters.
var envFallbacks = map[string][]string{
	KeyGeminiAPIKey:      {"GEMINI_API_KEY"},
	KeyHubBaseURL:        {"HA_BASE_URL"},
	KeyHubToken:          {"SUPERVISOR_TOKEN", "HASSIO_TOKEN"},
	KeyReplicateAPIToken: {"REPLICATE_API_TOKEN"},
	KeyHuggingFaceAPIKey: {"HUGGINGFACE_API_KEY"},
}

// Service reads settings with env fallbacks. Every successful Save bumps a
// version counter; consumers holding cached credentials compare versions
// instead of being invalidated by hand.
type Service struct {
	store   store.Store
	version atomic.Int64
}

func New(st store.Store) *Service {
	s := &Service{store: st}
	s.version.Store(1)
	return s
}

// Version returns the current settings version. It increases on every Save.
func (s *Service) Version() int64 { return s.version.Load() }

// Get returns the stored value for key, falling back to the mapped
// environment variables. Empty string when nothing is configured.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	v, err := s.store.Settings().Get(ctx, key)
	if err == nil && v != "" {
		return v, nil
	}
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return "", err
	}
	for _, env := range envFallbacks[key] {
		if ev := os.Getenv(env); ev != "" {
			return ev, nil
		}
	}
	// Supervisor deployments proxy the hub on a fixed URL.
	if key == KeyHubBaseURL {
		if tok, _ := s.Get(ctx, KeyHubToken); tok != "" {
			return "http://supervisor/core", nil
		}
	}
	return "", nil
}

// Save writes the given keys and bumps the settings version.
func (s *Service) Save(ctx context.Context, values map[string]string) error {
	for k, v := range values {
		if v == "" {
			if err := s.store.Settings().Delete(ctx, k); err != nil {
				return err
			}
			continue
		}
		if err := s.store.Settings().Set(ctx, k, v); err != nil {
			return err
		}
	}
	s.version.Add(1)
	return nil
}

// All returns every stored setting. Secrets are the caller's problem to mask.
func (s *Service) All(ctx context.Context) (map[string]string, error) {
	return s.store.Settings().All(ctx)
}
