package domain

// Page is the cleaned text of a single PDF page.
// Pages whose cleaned text is blank are never created.
type Page struct {
	// Text is the cleaned page text.
	Text string

	// PageNumber is the 1-based physical page number in the PDF.
	PageNumber int

	// SourcePath is the path of the PDF the page was read from.
	SourcePath string
}

// Chunk is a bounded slice of page text used as the unit of retrieval.
// A chunk never spans pages, so PageNumber is always unambiguous.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is a contiguous substring of the source page's cleaned text.
	Text string

	// PageNumber is inherited from the source Page.
	PageNumber int

	// SourcePath is inherited from the source Page.
	SourcePath string

	// Position is the ordinal position within the document.
	Position int
}
