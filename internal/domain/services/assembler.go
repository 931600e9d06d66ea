package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

// DeckAssembler composes extraction, boundary detection and segmentation
// into one immutable deck
type DeckAssembler struct {
	extractor    ports.BlockExtractor
	segmenter    *Segmenter
	excludeLevel int
	clock        ports.TimeProvider
	logger       *slog.Logger
}

// NewDeckAssembler creates a deck assembler
func NewDeckAssembler(
	extractor ports.BlockExtractor,
	cfg entities.PresentationConfig,
	clock ports.TimeProvider,
	logger *slog.Logger,
) *DeckAssembler {
	if clock == nil {
		clock = ports.NewRealTimeProvider()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckAssembler{
		extractor:    extractor,
		segmenter:    NewSegmenter(cfg),
		excludeLevel: cfg.GetBoundaryExcludeLevel(),
		clock:        clock,
		logger:       logger.With("service", "assembler"),
	}
}

// Assemble runs one pass over doc. The returned deck is always complete and
// valid, falling back to the single placeholder slide when nothing was
// extracted; the extraction result is returned so callers can inspect what
// happened.
func (a *DeckAssembler) Assemble(ctx context.Context, doc *ports.Document) (*entities.SlideDeck, ports.ExtractionResult) {
	var result ports.ExtractionResult
	if doc != nil && doc.Root != nil {
		result = a.extractor.Extract(doc.Root)
	}

	level, ok := DetectBoundary(result.Blocks, a.excludeLevel)
	deckID := uuid.New().String()
	slides := a.segmenter.Segment(deckID, result.Blocks, level, ok)

	deck := &entities.SlideDeck{
		ID:          deckID,
		CreatedAt:   a.clock.Now(),
		Slides:      slides,
		ParseErrors: toParseErrors(result.Diagnostics),
		BlockCount:  len(result.Blocks),
	}

	if doc != nil {
		deck.SourceIdentifier = doc.Identifier
		deck.Title = doc.Title
	}
	if deck.Title == "" {
		deck.Title = result.Title
	}
	if deck.Title == "" {
		deck.Title = slides[0].Title
	}

	a.logger.InfoContext(ctx, "deck assembled",
		slog.String("deck_id", deck.ID),
		slog.String("source", deck.SourceIdentifier),
		slog.Int("blocks", deck.BlockCount),
		slog.Int("slides", deck.SlideCount()),
		slog.Int("boundary_level", level),
		slog.Int("parse_errors", len(deck.ParseErrors)),
	)

	return deck, result
}

func toParseErrors(diags []ports.Diagnostic) []entities.ParseError {
	if len(diags) == 0 {
		return nil
	}
	out := make([]entities.ParseError, 0, len(diags))
	for _, d := range diags {
		out = append(out, entities.ParseError{BlockID: d.BlockID, Message: d.Message, BlockKind: d.BlockKind})
	}
	return out
}
