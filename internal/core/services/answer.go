package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driving"
	"github.com/custodia-labs/pdfqa/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// Prompt variables filled in for the answer prompt.
const (
	promptVarContext  = "context"
	promptVarQuestion = "question"
)

// contextSeparator joins retrieved chunk texts in the prompt.
const contextSeparator = "\n\n"

// AnswerService answers questions from retrieved chunks.
type AnswerService struct {
	llm         driven.LLMService
	prompts     driven.PromptStore
	topK        int
	temperature float64
	maxTokens   int
	missingLLM  string
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithTopK sets how many chunks are retrieved when a caller passes k <= 0.
func WithTopK(k int) AnswerOption {
	return func(s *AnswerService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) AnswerOption {
	return func(s *AnswerService) {
		if t >= 0 {
			s.temperature = t
		}
	}
}

// WithMaxTokens bounds the answer length.
func WithMaxTokens(n int) AnswerOption {
	return func(s *AnswerService) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithMissingLLMHint sets the message returned when no LLM is configured,
// typically naming the environment variable that holds the API key.
func WithMissingLLMHint(hint string) AnswerOption {
	return func(s *AnswerService) {
		if hint != "" {
			s.missingLLM = hint
		}
	}
}

// NewAnswerService creates a new answer service. llm may be nil, in which
// case every Answer call fails with domain.ErrConfiguration.
func NewAnswerService(llm driven.LLMService, promptStore driven.PromptStore, opts ...AnswerOption) *AnswerService {
	s := &AnswerService{
		llm:         llm,
		prompts:     promptStore,
		topK:        domain.DefaultTopK,
		temperature: domain.DefaultTemperature,
		maxTokens:   domain.DefaultMaxTokens,
		missingLLM:  "no LLM provider configured; set " + domain.AIProviderGroq.APIKeyEnv(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer retrieves the chunks most similar to query and asks the LLM to
// answer from them alone. The model's text is returned verbatim apart from
// surrounding whitespace.
func (s *AnswerService) Answer(ctx context.Context, index driving.Index, query string, k int) (*domain.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if index == nil {
		return nil, fmt.Errorf("%w: no index loaded", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfiguration, s.missingLLM)
	}
	if k <= 0 {
		k = s.topK
	}

	logger.Section("Retrieval")
	retrieved, err := index.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}
	for i, rc := range retrieved {
		logger.Debug("  %d. page %d (similarity %.4f)", i+1, rc.Chunk.PageNumber, rc.Similarity)
	}

	prompt, err := s.renderPrompt(retrieved, query)
	if err != nil {
		return nil, err
	}

	logger.Section("Generation")
	logger.Debug("model %s, %d prompt chars", s.llm.ModelName(), len(prompt))
	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generate answer: %w", domain.ErrQuery, err)
	}
	if strings.Contains(answer, domain.RefusalPhrase) {
		logger.Debug("model declined: context did not contain the answer")
	}

	sources := make([]domain.Source, len(retrieved))
	for i, rc := range retrieved {
		sources[i] = domain.NewSource(rc)
	}

	return &domain.QueryResult{
		Answer:     answer,
		Sources:    sources,
		NumSources: len(sources),
	}, nil
}

func (s *AnswerService) renderPrompt(retrieved []domain.RetrievedChunk, query string) (string, error) {
	if s.prompts == nil {
		return "", fmt.Errorf("%w: no prompt store configured", domain.ErrConfiguration)
	}
	tpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil {
		return "", fmt.Errorf("%w: load answer prompt: %w", domain.ErrConfiguration, err)
	}

	texts := make([]string, len(retrieved))
	for i, rc := range retrieved {
		texts[i] = rc.Chunk.Text
	}

	pt := prompts.NewPromptTemplate(tpl, []string{promptVarContext, promptVarQuestion})
	out, err := pt.Format(map[string]any{
		promptVarContext:  strings.Join(texts, contextSeparator),
		promptVarQuestion: query,
	})
	if err != nil {
		return "", fmt.Errorf("%w: render answer prompt: %w", domain.ErrConfiguration, err)
	}
	return out, nil
}
