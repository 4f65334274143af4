package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfqa/internal/adapters/driven/index"
	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driving"
)

func buildTestIndex(t *testing.T, pages []domain.Page, embedder *hashEmbedder) driving.Index {
	t.Helper()
	service := newTestIndexService(&mockExtractor{pages: pages}, embedder, index.NewMemoryRepository())
	idx, err := service.BuildOrLoad(context.Background(), domain.BuildRequest{PDFPath: writePDF(t, "pdf")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func newTestPromptStore(t *testing.T) *file.PromptStore {
	t.Helper()
	store, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestAnswerService_SingleFactDocument(t *testing.T) {
	ctx := context.Background()
	idx := buildTestIndex(t, []domain.Page{{Text: "Swiggy had 500 restaurants in 2023.", PageNumber: 1}}, newHashEmbedder())
	llm := &mockLLM{}
	service := NewAnswerService(llm, newTestPromptStore(t))

	result, err := service.Answer(ctx, idx, "How many restaurants did Swiggy have in 2023?", 0)

	require.NoError(t, err)
	require.NotEmpty(t, result.Sources)
	assert.Equal(t, 1, result.Sources[0].PageNumber)
	assert.Equal(t, "Swiggy had 500 restaurants in 2023.", result.Sources[0].Content)
	assert.Equal(t, "Swiggy had 500 restaurants in 2023.", result.Answer)
	assert.NotContains(t, result.Answer, domain.RefusalPhrase)
	assert.Equal(t, len(result.Sources), result.NumSources)
}

func TestAnswerService_ReturnsModelTextVerbatim(t *testing.T) {
	ctx := context.Background()
	idx := buildTestIndex(t, []domain.Page{{Text: "Swiggy had 500 restaurants in 2023.", PageNumber: 1}}, newHashEmbedder())
	raw := "  Swiggy had 500 restaurants.\n\nSource: page 1\n"
	llm := &mockLLM{respond: func(string) string { return raw }}
	service := NewAnswerService(llm, newTestPromptStore(t))

	result, err := service.Answer(ctx, idx, "How many restaurants?", 0)

	require.NoError(t, err)
	assert.Equal(t, raw, result.Answer)
}

func TestAnswerService_Refusal(t *testing.T) {
	ctx := context.Background()
	idx := buildTestIndex(t, []domain.Page{{Text: "Swiggy had 500 restaurants in 2023.", PageNumber: 1}}, newHashEmbedder())
	service := NewAnswerService(&mockLLM{}, newTestPromptStore(t))

	result, err := service.Answer(ctx, idx, "Who founded Zomato?", 4)

	require.NoError(t, err)
	assert.Equal(t, domain.RefusalPhrase, result.Answer)
	assert.Equal(t, 1, result.NumSources)
}

func TestAnswerService_KLargerThanIndex(t *testing.T) {
	ctx := context.Background()
	idx := buildTestIndex(t, []domain.Page{
		{Text: "Revenue grew in the third quarter.", PageNumber: 1},
		{Text: "Headcount stayed flat across regions.", PageNumber: 2},
	}, newHashEmbedder())
	service := NewAnswerService(&mockLLM{}, newTestPromptStore(t))

	result, err := service.Answer(ctx, idx, "How did revenue change?", 4)

	require.NoError(t, err)
	assert.Len(t, result.Sources, 2)
	assert.Equal(t, 2, result.NumSources)
	assert.NotEqual(t, result.Sources[0].PageNumber, result.Sources[1].PageNumber)
}

func TestAnswerService_EmptyQuery(t *testing.T) {
	embedder := newHashEmbedder()
	idx := buildTestIndex(t, []domain.Page{{Text: "Some text.", PageNumber: 1}}, embedder)
	llm := &mockLLM{}
	service := NewAnswerService(llm, newTestPromptStore(t))

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := service.Answer(context.Background(), idx, q, 4)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	embed, _ := embedder.calls()
	assert.Zero(t, embed, "embedder must not be called")
	assert.Zero(t, llm.calls, "LLM must not be called")
}

func TestAnswerService_NoLLM(t *testing.T) {
	embedder := newHashEmbedder()
	idx := buildTestIndex(t, []domain.Page{{Text: "Some text.", PageNumber: 1}}, embedder)
	service := NewAnswerService(nil, newTestPromptStore(t))

	_, err := service.Answer(context.Background(), idx, "What is this?", 4)

	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
	embed, _ := embedder.calls()
	assert.Zero(t, embed)
}

func TestAnswerService_MissingLLMHint(t *testing.T) {
	idx := buildTestIndex(t, []domain.Page{{Text: "Some text.", PageNumber: 1}}, newHashEmbedder())
	service := NewAnswerService(nil, newTestPromptStore(t), WithMissingLLMHint("set OPENAI_API_KEY"))

	_, err := service.Answer(context.Background(), idx, "What is this?", 4)

	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestAnswerService_NilIndex(t *testing.T) {
	service := NewAnswerService(&mockLLM{}, newTestPromptStore(t))

	_, err := service.Answer(context.Background(), nil, "question", 4)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswerService_LLMFailure(t *testing.T) {
	idx := buildTestIndex(t, []domain.Page{{Text: "Some text.", PageNumber: 1}}, newHashEmbedder())
	llm := &mockLLM{err: assert.AnError}
	service := NewAnswerService(llm, newTestPromptStore(t))

	_, err := service.Answer(context.Background(), idx, "What is this?", 4)

	assert.ErrorIs(t, err, domain.ErrQuery)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, llm.calls, "no retry")
}

func TestAnswerService_PromptAndOptions(t *testing.T) {
	idx := buildTestIndex(t, []domain.Page{
		{Text: "Alpha beta gamma.", PageNumber: 1},
		{Text: "Delta epsilon zeta.", PageNumber: 2},
	}, newHashEmbedder())
	llm := &mockLLM{respond: func(string) string { return "ok" }}
	service := NewAnswerService(llm, newTestPromptStore(t), WithTemperature(0.1), WithMaxTokens(64))

	result, err := service.Answer(context.Background(), idx, "alpha beta?", 2)
	require.NoError(t, err)

	want := result.Sources[0].Content + "\n\n" + result.Sources[1].Content
	assert.Contains(t, llm.lastPrompt, "Context:\n"+want+"\n\nQuestion: alpha beta?\n\nAnswer:")
	assert.Contains(t, llm.lastPrompt, "strictly based on the provided context")
	assert.InDelta(t, 0.1, llm.lastOpts.Temperature, 1e-9)
	assert.Equal(t, 64, llm.lastOpts.MaxTokens)
}

func TestAnswerService_DefaultOptions(t *testing.T) {
	idx := buildTestIndex(t, []domain.Page{{Text: "Some text.", PageNumber: 1}}, newHashEmbedder())
	llm := &mockLLM{respond: func(string) string { return "ok" }}
	service := NewAnswerService(llm, newTestPromptStore(t))

	_, err := service.Answer(context.Background(), idx, "text?", 0)
	require.NoError(t, err)

	assert.InDelta(t, domain.DefaultTemperature, llm.lastOpts.Temperature, 1e-9)
	assert.Equal(t, domain.DefaultMaxTokens, llm.lastOpts.MaxTokens)
}

func TestAnswerService_CustomPrompt(t *testing.T) {
	idx := buildTestIndex(t, []domain.Page{{Text: "Some text.", PageNumber: 1}}, newHashEmbedder())
	llm := &mockLLM{respond: func(string) string { return "ok" }}
	prompts := &staticPromptStore{prompt: "Q={{.question}} C={{.context}}"}
	service := NewAnswerService(llm, prompts)

	_, err := service.Answer(context.Background(), idx, "why?", 1)
	require.NoError(t, err)

	assert.Equal(t, "Q=why? C=Some text.", llm.lastPrompt)
}

func TestAnswerService_PromptErrors(t *testing.T) {
	idx := buildTestIndex(t, []domain.Page{{Text: "Some text.", PageNumber: 1}}, newHashEmbedder())

	_, err := NewAnswerService(&mockLLM{}, &staticPromptStore{err: assert.AnError}).
		Answer(context.Background(), idx, "why?", 1)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewAnswerService(&mockLLM{}, nil).Answer(context.Background(), idx, "why?", 1)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewAnswerService(&mockLLM{}, &staticPromptStore{prompt: "{{.context"}).
		Answer(context.Background(), idx, "why?", 1)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
