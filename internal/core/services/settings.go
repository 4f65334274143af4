package services

import (
	"fmt"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyIndexDir       = "index.dir"
	keyIndexBackend   = "index.vector_backend"
	keyIndexCompress  = "index.compress"
	keyChunkSize      = "chunking.size"
	keyChunkOverlap   = "chunking.overlap"
	keyRetrievalK     = "retrieval.k"
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedCacheDir  = "embedding.cache_dir"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTemperature = "llm.temperature"
	keyLLMMaxTokens   = "llm.max_tokens"
)

const (
	maxLLMTemperature = 2.0
	defaultOllamaURL  = "http://localhost:11434"
)

type setting struct {
	key   string
	value any
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Index: domain.IndexSettings{
			Dir:           s.getString(keyIndexDir, defaults.Index.Dir),
			VectorBackend: s.getBackend(defaults.Index.VectorBackend),
			Compress:      s.getBool(keyIndexCompress, defaults.Index.Compress),
		},
		Chunking: domain.ChunkingSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			K: s.getInt(keyRetrievalK, defaults.Retrieval.K),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
			CacheDir: s.configStore.GetString(keyEmbedCacheDir),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:     s.getString(keyLLMBaseURL, defaults.LLM.BaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
		},
	}

	// A stored model belongs to the stored provider; a default model only
	// makes sense for the default provider.
	if settings.Embedding.Provider != defaults.Embedding.Provider && s.configStore.GetString(keyEmbedModel) == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Provider != defaults.LLM.Provider {
		if s.configStore.GetString(keyLLMModel) == "" {
			settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
		}
		if s.configStore.GetString(keyLLMBaseURL) == "" {
			settings.LLM.BaseURL = domain.DefaultBaseURLs()[settings.LLM.Provider]
		}
	}

	return settings, nil
}

// Save persists application settings. Callers pass settings read with Get,
// never ones with environment credentials resolved into them.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []setting{
		{keyIndexDir, settings.Index.Dir},
		{keyIndexBackend, settings.Index.VectorBackend.String()},
		{keyIndexCompress, settings.Index.Compress},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyRetrievalK, settings.Retrieval.K},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedCacheDir, settings.Embedding.CacheDir},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// Changing the embedding model invalidates existing indexes; they are
// rejected as incompatible on next load and must be rebuilt.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() || !provider.SupportsEmbedding() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}

	switch provider {
	case domain.AIProviderOllama:
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = defaultOllamaURL
		}
	case domain.AIProviderFastEmbed:
		settings.Embedding.BaseURL = ""
	default:
		// Cloud providers use their public endpoint unless one was set.
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider. The API key may be empty
// when it will be supplied through the provider's environment variable.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() || !provider.SupportsLLM() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	// Each provider has its own endpoint; never carry one across.
	settings.LLM.BaseURL = domain.DefaultBaseURLs()[provider]
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetIndexDir sets where indexes are persisted.
func (s *SettingsService) SetIndexDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: index directory is empty", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyIndexDir, dir); err != nil {
		return fmt.Errorf("save %s: %w", keyIndexDir, err)
	}
	return nil
}

// Validate checks that current settings are usable for building and
// querying an index. Missing LLM credentials are not an error here;
// indexing works without them.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, settings.Chunking.Size)
	}
	if settings.Chunking.Overlap < 0 || settings.Chunking.Overlap >= settings.Chunking.Size {
		return fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d",
			domain.ErrConfiguration, settings.Chunking.Size, settings.Chunking.Overlap)
	}
	if settings.Retrieval.K < 1 {
		return fmt.Errorf("%w: retrieval k must be at least 1, got %d", domain.ErrConfiguration, settings.Retrieval.K)
	}
	if settings.LLM.Temperature < 0 || settings.LLM.Temperature > maxLLMTemperature {
		return fmt.Errorf("%w: temperature must be in [0, %.1f], got %g",
			domain.ErrConfiguration, maxLLMTemperature, settings.LLM.Temperature)
	}
	if settings.LLM.MaxTokens < 1 {
		return fmt.Errorf("%w: max tokens must be positive, got %d", domain.ErrConfiguration, settings.LLM.MaxTokens)
	}
	if !settings.Embedding.Provider.SupportsEmbedding() {
		return fmt.Errorf("%w: %s cannot generate embeddings", domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if !settings.LLM.Provider.SupportsLLM() {
		return fmt.Errorf("%w: %s cannot generate answers", domain.ErrConfiguration, settings.LLM.Provider)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	val := s.configStore.GetString(keyIndexBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.VectorBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
