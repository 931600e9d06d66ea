package ports

import (
	"context"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

// Renderer paints slides for the host page
type Renderer interface {
	// RenderPresentation renders the page that hosts a deck
	RenderPresentation(ctx context.Context, deck *entities.SlideDeck) ([]byte, error)

	// RenderSlide renders one slide's blocks as an HTML fragment
	RenderSlide(ctx context.Context, slide *entities.Slide, total int) ([]byte, error)
}
