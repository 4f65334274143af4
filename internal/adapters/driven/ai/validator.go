package ai

import (
	"fmt"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before they are saved.
// Credentials missing from settings are looked up in the environment so
// that a key exported in .env validates the same way as a stored one.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding rejects unknown providers and pings known ones.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || config.Provider == "" {
		return nil
	}
	if !config.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, config.Provider)
	}
	resolved := *config
	if resolved.APIKey == "" && resolved.Provider.APIKeyEnv() != "" {
		resolved.APIKey = lookupEnv(resolved.Provider.APIKeyEnv())
	}
	return ValidateEmbeddingConfig(&resolved)
}

// ValidateLLM rejects unknown providers and pings known ones.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || config.Provider == "" {
		return nil
	}
	if !config.Provider.IsValid() {
		return fmt.Errorf("%w: unknown LLM provider %q", domain.ErrConfiguration, config.Provider)
	}
	resolved := *config
	if resolved.APIKey == "" && resolved.Provider.APIKeyEnv() != "" {
		resolved.APIKey = lookupEnv(resolved.Provider.APIKeyEnv())
	}
	return ValidateLLMConfig(&resolved)
}
