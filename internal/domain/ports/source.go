package ports

import (
	"context"

	"golang.org/x/net/html"
)

// Document is a parsed source tree ready for extraction
type Document struct {
	// Identifier is the opaque source identifier, usually a page URL
	Identifier string

	// Title is the document title if the source exposes one
	Title string

	Root *html.Node
}

// DocumentSource loads a document tree for a source identifier
type DocumentSource interface {
	// Supports reports whether the source can load the identifier
	Supports(identifier string) bool

	// Fetch loads and parses the document
	Fetch(ctx context.Context, identifier string) (*Document, error)
}
