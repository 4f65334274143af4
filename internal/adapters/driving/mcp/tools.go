package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the document"`
	K        int    `json:"k,omitempty" jsonschema:"number of chunks to retrieve as context (default 4)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string          `json:"answer"`
	Sources    []domain.Source `json:"sources"`
	NumSources int             `json:"num_sources"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"text to find similar chunks for"`
	K     int    `json:"k,omitempty" jsonschema:"maximum number of chunks to return (default from settings, 4)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
}

// ChunkOutput is a single retrieved chunk.
type ChunkOutput struct {
	Text       string  `json:"text"`
	Page       int     `json:"page"`
	Similarity float64 `json:"similarity"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the indexed PDF; returns the answer and the page-numbered sources it used",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the chunks of the indexed PDF most similar to a query, without generating an answer",
	}, s.handleRetrieve)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answer == nil {
		return nil, AskOutput{}, ErrMissingAnswerService
	}

	result, err := s.ports.Answer.Answer(ctx, s.ports.Index, input.Question, input.K)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:     result.Answer,
		Sources:    result.Sources,
		NumSources: result.NumSources,
	}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	k := input.K
	if k <= 0 {
		k = s.ports.TopK
	}
	if k <= 0 {
		k = domain.DefaultTopK
	}

	results, err := s.ports.Index.Retrieve(ctx, input.Query, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{Chunks: make([]ChunkOutput, len(results))}
	for i, rc := range results {
		output.Chunks[i] = ChunkOutput{
			Text:       rc.Chunk.Text,
			Page:       rc.Chunk.PageNumber,
			Similarity: rc.Similarity,
		}
	}

	return nil, output, nil
}
