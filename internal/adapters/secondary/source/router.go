// Package source provides the document sources a presentation can be
// built from.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/zorro901/presenotion/internal/domain/ports"
)

// ErrUnsupportedSource is returned when no source accepts an identifier
var ErrUnsupportedSource = errors.New("no source supports identifier")

// Router dispatches to the first source that supports an identifier
type Router struct {
	sources []ports.DocumentSource
}

// NewRouter creates a router over sources, consulted in order
func NewRouter(sources ...ports.DocumentSource) *Router {
	return &Router{sources: sources}
}

// Supports reports whether any source accepts identifier
func (r *Router) Supports(identifier string) bool {
	return r.pick(identifier) != nil
}

// Fetch loads identifier from the first supporting source
func (r *Router) Fetch(ctx context.Context, identifier string) (*ports.Document, error) {
	src := r.pick(identifier)
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, identifier)
	}
	return src.Fetch(ctx, identifier)
}

func (r *Router) pick(identifier string) ports.DocumentSource {
	for _, s := range r.sources {
		if s.Supports(identifier) {
			return s
		}
	}
	return nil
}

var _ ports.DocumentSource = (*Router)(nil)
var _ ports.DocumentSource = (*FileSource)(nil)
var _ ports.DocumentSource = (*BrowserSource)(nil)
