package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// DefaultAnswerPrompt instructs the model to answer only from the
// retrieved context and to refuse with a fixed sentence otherwise.
const DefaultAnswerPrompt = `You are an AI assistant that answers questions strictly based on the provided context from the document.
If the answer is not present in the context, say "I don't have enough information in the document to answer this."
Do NOT make up any information.

Context:
{{.context}}

Question: {{.question}}

Answer:`

var defaultPrompts = map[string]string{
	driven.PromptAnswer: DefaultAnswerPrompt,
}

// PromptStore serves prompt templates, preferring <dir>/<name>.txt over
// the built-in default. Nothing is written to disk unless
// WriteDefaults is called.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
}

// NewPromptStore creates a prompt store. If promptDir is empty it
// defaults to ~/.pdfqa/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the named prompt. An override file that exists but is
// empty is ignored.
func (s *PromptStore) Load(name string) (string, error) {
	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.readOverride(name)
	switch {
	case err == nil && prompt != "":
	case err == nil || errors.Is(err, os.ErrNotExist):
		def, known := defaultPrompts[name]
		if !known {
			return "", fmt.Errorf("unknown prompt %q", name)
		}
		prompt = def
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	s.cache[name] = prompt
	s.mu.Unlock()
	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// WriteDefaults creates the prompt directory and writes any default
// prompt that has no file yet. Existing files are left alone.
func (s *PromptStore) WriteDefaults() error {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content+"\n"), 0o600); err != nil {
			return fmt.Errorf("write default prompt %q: %w", name, err)
		}
	}
	return nil
}

func (s *PromptStore) readOverride(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
