// Package config persists application settings: the multi-provider AI
// configuration and saved database connection profiles.
//
// Design decisions:
//   - Stores are explicit objects constructed once at startup over a
//     kv.Store, passed by reference to consumers. No package-level
//     singletons, no lazy global state.
//   - The legacy single-provider config is a pure projection of the
//     multi-provider document. It is written into the document as a
//     mirror for older readers but never read back as truth.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/DachengChen/pgstudio/ai"
	"github.com/DachengChen/pgstudio/kv"
)

// aiConfigKey is the KV document holding AI provider configuration,
// named to stay clear of unrelated app storage.
const aiConfigKey = "ai-provider-config"

// ProviderConfig is one provider's runtime credentials/endpoint.
type ProviderConfig struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// MultiProviderConfig maps providers to their runtime configuration,
// with one active provider and one active model per provider.
type MultiProviderConfig struct {
	Providers      map[ai.ProviderID]ProviderConfig `json:"providers"`
	ActiveProvider ai.ProviderID                    `json:"activeProvider"`
	ActiveModels   map[ai.ProviderID]string         `json:"activeModels"`
}

// aiConfigDocument is the persisted shape: the multi-provider config
// plus the derived legacy mirror, rewritten on every mutation.
type aiConfigDocument struct {
	MultiProviderConfig
	Legacy *ai.LegacyConfig `json:"legacy,omitempty"`
}

// AIConfigStore persists the multi-provider configuration.
type AIConfigStore struct {
	kv kv.Store
}

// NewAIConfigStore creates the store over the given persistence backend.
func NewAIConfigStore(store kv.Store) *AIConfigStore {
	return &AIConfigStore{kv: store}
}

// Get returns the current configuration, or nil if none exists yet.
func (s *AIConfigStore) Get() (*MultiProviderConfig, error) {
	raw, ok, err := s.kv.Get(aiConfigKey)
	if err != nil {
		return nil, fmt.Errorf("read ai config: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var doc aiConfigDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse ai config: %w", err)
	}
	cfg := doc.MultiProviderConfig
	if cfg.Providers == nil {
		cfg.Providers = map[ai.ProviderID]ProviderConfig{}
	}
	if cfg.ActiveModels == nil {
		cfg.ActiveModels = map[ai.ProviderID]string{}
	}
	return &cfg, nil
}

func (s *AIConfigStore) save(cfg *MultiProviderConfig) error {
	doc := aiConfigDocument{
		MultiProviderConfig: *cfg,
		Legacy:              DeriveLegacyConfig(cfg),
	}
	if err := s.kv.Set(aiConfigKey, doc); err != nil {
		return fmt.Errorf("write ai config: %w", err)
	}
	return nil
}

// SetProviderConfig upserts one provider's entry. The first provider
// ever configured becomes the active provider.
func (s *AIConfigStore) SetProviderConfig(id ai.ProviderID, pc ProviderConfig) error {
	if _, err := ai.GetProvider(id); err != nil {
		return err
	}
	cfg, err := s.Get()
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &MultiProviderConfig{
			Providers:    map[ai.ProviderID]ProviderConfig{},
			ActiveModels: map[ai.ProviderID]string{},
		}
	}
	cfg.Providers[id] = pc
	if cfg.ActiveProvider == "" {
		cfg.ActiveProvider = id
	}
	return s.save(cfg)
}

// RemoveProviderConfig deletes a provider's entry. If it was active,
// the first remaining configured provider (registry order) becomes
// active, or openai as an unconfigured placeholder when none remain.
func (s *AIConfigStore) RemoveProviderConfig(id ai.ProviderID) error {
	cfg, err := s.Get()
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}
	delete(cfg.Providers, id)
	delete(cfg.ActiveModels, id)

	if cfg.ActiveProvider == id {
		cfg.ActiveProvider = ai.ProviderOpenAI
		for _, p := range ai.Providers() {
			if hasPresentConfig(cfg, p.ID) {
				cfg.ActiveProvider = p.ID
				break
			}
		}
	}
	return s.save(cfg)
}

// SetActiveProvider switches the active provider. No-op while no
// configuration exists yet.
func (s *AIConfigStore) SetActiveProvider(id ai.ProviderID) error {
	if _, err := ai.GetProvider(id); err != nil {
		return err
	}
	cfg, err := s.Get()
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}
	cfg.ActiveProvider = id
	return s.save(cfg)
}

// SetActiveModel records the active model for one provider.
func (s *AIConfigStore) SetActiveModel(id ai.ProviderID, modelID string) error {
	if _, err := ai.GetProvider(id); err != nil {
		return err
	}
	cfg, err := s.Get()
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &MultiProviderConfig{
			Providers:    map[ai.ProviderID]ProviderConfig{},
			ActiveModels: map[ai.ProviderID]string{},
		}
	}
	cfg.ActiveModels[id] = modelID
	return s.save(cfg)
}

// IsConfigured reports whether the active provider has a present
// configuration.
func (s *AIConfigStore) IsConfigured() (bool, error) {
	cfg, err := s.Get()
	if err != nil {
		return false, err
	}
	return cfg != nil && hasPresentConfig(cfg, cfg.ActiveProvider), nil
}

// DeriveLegacy returns the simplified single-provider view for the
// current configuration, or nil if none exists.
func (s *AIConfigStore) DeriveLegacy() (*ai.LegacyConfig, error) {
	cfg, err := s.Get()
	if err != nil {
		return nil, err
	}
	return DeriveLegacyConfig(cfg), nil
}

// DeriveLegacyConfig is the pure projection from the multi-provider
// configuration to the legacy single-provider shape. The active model
// falls back to the provider's recommended-or-first model.
func DeriveLegacyConfig(cfg *MultiProviderConfig) *ai.LegacyConfig {
	if cfg == nil || cfg.ActiveProvider == "" {
		return nil
	}
	pc := cfg.Providers[cfg.ActiveProvider]
	model := cfg.ActiveModels[cfg.ActiveProvider]
	if model == "" {
		model = ai.DefaultModel(cfg.ActiveProvider)
	}
	return &ai.LegacyConfig{
		Provider: cfg.ActiveProvider,
		APIKey:   pc.APIKey,
		Model:    model,
		BaseURL:  pc.BaseURL,
	}
}

// hasPresentConfig applies the presence rule: every provider except
// ollama needs a non-empty API key; ollama is present as soon as an
// entry exists, even with the default localhost URL.
func hasPresentConfig(cfg *MultiProviderConfig, id ai.ProviderID) bool {
	pc, ok := cfg.Providers[id]
	if !ok {
		return false
	}
	if id == ai.ProviderOllama {
		return true
	}
	return pc.APIKey != ""
}
