package services

import (
	"context"
	"hash/fnv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockExtractor implements driven.DocumentExtractor with fixed pages.
type mockExtractor struct {
	pages    []domain.Page
	err      error
	availErr error
	calls    int
}

func (m *mockExtractor) Name() string { return "mock" }

func (m *mockExtractor) CheckAvailable() error { return m.availErr }

func (m *mockExtractor) Extract(_ context.Context, path string) ([]domain.Page, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	pages := make([]domain.Page, len(m.pages))
	for i, p := range m.pages {
		p.SourcePath = path
		pages[i] = p
	}
	return pages, nil
}

// hashEmbedder implements driven.EmbeddingService with a bag-of-words
// hashing embedding so that texts sharing words are similar. It counts
// every call.
type hashEmbedder struct {
	mu         sync.Mutex
	model      string
	dims       int
	embedErr   error
	embedCalls int
	batchCalls int
}

func newHashEmbedder() *hashEmbedder {
	return &hashEmbedder{model: "hash-embed", dims: 64}
}

func (m *hashEmbedder) vector(text string) []float32 {
	vec := make([]float32, m.dims)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%uint32(m.dims)]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec
}

func (m *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *hashEmbedder) calls() (embed, batch int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls, m.batchCalls
}

func (m *hashEmbedder) Dimensions() int              { return m.dims }
func (m *hashEmbedder) ModelName() string            { return m.model }
func (m *hashEmbedder) Ping(_ context.Context) error { return nil }
func (m *hashEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService. By default it answers with the
// first context line mentioning a word from the question, and with the
// refusal phrase otherwise.
type mockLLM struct {
	respond    func(prompt string) string
	err        error
	calls      int
	lastPrompt string
	lastOpts   driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	if m.respond != nil {
		return m.respond(prompt), nil
	}
	return groundedAnswer(prompt), nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// groundedAnswer picks the context paragraph sharing the most
// non-trivial words with the question.
func groundedAnswer(prompt string) string {
	ctxStart := strings.Index(prompt, "Context:\n")
	qStart := strings.Index(prompt, "\n\nQuestion: ")
	if ctxStart < 0 || qStart < 0 {
		return domain.RefusalPhrase
	}
	contextText := prompt[ctxStart+len("Context:\n") : qStart]
	question := strings.TrimSuffix(strings.SplitN(prompt[qStart+len("\n\nQuestion: "):], "\n", 2)[0], "?")

	best, bestScore := "", 0
	for _, para := range strings.Split(contextText, "\n\n") {
		score := 0
		lower := strings.ToLower(para)
		for _, w := range strings.Fields(strings.ToLower(question)) {
			if len(w) > 3 && strings.Contains(lower, w) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = para, score
		}
	}
	if bestScore == 0 {
		return domain.RefusalPhrase
	}
	return best
}

// staticPromptStore implements driven.PromptStore.
type staticPromptStore struct {
	prompt string
	err    error
}

func (s *staticPromptStore) Load(_ string) (string, error) { return s.prompt, s.err }
func (s *staticPromptStore) Reload()                       {}

// writePDF writes placeholder bytes where the extractor mock pretends a
// PDF lives, so the source can be hashed.
func writePDF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
