package ports

import (
	"golang.org/x/net/html"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

// Diagnostic is a non-fatal note recorded while extracting blocks
type Diagnostic struct {
	BlockID   string
	BlockKind entities.BlockKind
	Message   string
}

// ExtractionResult carries the blocks of one extraction pass and everything
// learned along the way
type ExtractionResult struct {
	Blocks      []entities.ContentBlock
	Diagnostics []Diagnostic
	Title       string

	// Fatal is set when the document could not be traversed at all.
	// Blocks is empty in that case.
	Fatal error
}

// BlockExtractor turns a document tree into an ordered list of content blocks.
// Implementations never panic on malformed input.
type BlockExtractor interface {
	Extract(root *html.Node) ExtractionResult

	// Recognizes reports whether the tree looks like a page the extractor
	// was built for
	Recognizes(root *html.Node) bool
}
