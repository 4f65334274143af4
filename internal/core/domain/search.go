package domain

// RefusalPhrase is the fixed answer the model is instructed to give
// when the retrieved context does not contain the answer.
const RefusalPhrase = "I don't have enough information in the document to answer this."

// SnippetLength is the number of characters of chunk text shown in a source snippet.
const SnippetLength = 200

// RetrievedChunk is a chunk returned by similarity search.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Similarity is the cosine similarity between the query and the chunk.
	Similarity float64
}

// Source is a retrieved chunk as presented alongside an answer.
type Source struct {
	// Snippet is a short preview of Content.
	Snippet string `json:"content"`

	// Content is the full chunk text.
	Content string `json:"full_content"`

	// PageNumber is the page the chunk came from.
	PageNumber int `json:"page"`

	// Similarity is the retrieval score.
	Similarity float64 `json:"similarity"`
}

// NewSource builds a Source from a retrieved chunk.
func NewSource(rc RetrievedChunk) Source {
	return Source{
		Snippet:    Snippet(rc.Chunk.Text),
		Content:    rc.Chunk.Text,
		PageNumber: rc.Chunk.PageNumber,
		Similarity: rc.Similarity,
	}
}

// Snippet returns the first SnippetLength characters of text followed by "..."
// when text is longer, and text unchanged otherwise.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetLength {
		return text
	}
	return string(runes[:SnippetLength]) + "..."
}

// QueryResult is the grounded answer to a question.
type QueryResult struct {
	// Answer is the model's response, returned verbatim.
	Answer string `json:"answer"`

	// Sources are the retrieved chunks in rank order.
	Sources []Source `json:"sources"`

	// NumSources is len(Sources).
	NumSources int `json:"num_sources"`
}
