package builders

import (
	"fmt"
	"time"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

// DeckBuilder helps build SlideDeck entities for testing
type DeckBuilder struct {
	deck *entities.SlideDeck
}

// NewDeckBuilder creates a deck builder with sensible defaults
func NewDeckBuilder() *DeckBuilder {
	return &DeckBuilder{
		deck: &entities.SlideDeck{
			ID:               "deck-test",
			Title:            "Test Deck",
			SourceIdentifier: "https://www.notion.so/team/Test-Deck",
			CreatedAt:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Slides:           []entities.Slide{},
		},
	}
}

// WithID sets the deck id
func (b *DeckBuilder) WithID(id string) *DeckBuilder {
	b.deck.ID = id
	return b
}

// WithTitle sets the deck title
func (b *DeckBuilder) WithTitle(title string) *DeckBuilder {
	b.deck.Title = title
	return b
}

// WithSource sets the source identifier
func (b *DeckBuilder) WithSource(identifier string) *DeckBuilder {
	b.deck.SourceIdentifier = identifier
	return b
}

// WithSlide appends a slide built from blocks at the next position
func (b *DeckBuilder) WithSlide(title string, blocks ...entities.ContentBlock) *DeckBuilder {
	position := len(b.deck.Slides)
	slide := entities.NewSlide(fmt.Sprintf("slide-%d", position), position, title, blocks, entities.DefaultBaseFontSize)
	b.deck.Slides = append(b.deck.Slides, slide)
	b.deck.BlockCount += len(blocks)
	return b
}

// WithSlideCount appends count slides titled "Slide N"
func (b *DeckBuilder) WithSlideCount(count int) *DeckBuilder {
	for i := 0; i < count; i++ {
		b.WithSlide(fmt.Sprintf("Slide %d", len(b.deck.Slides)+1),
			entities.NewParagraph(fmt.Sprintf("p-%d", len(b.deck.Slides)), "Body text", nil))
	}
	return b
}

// WithParseError records a parse error on the deck
func (b *DeckBuilder) WithParseError(blockID, message string) *DeckBuilder {
	b.deck.ParseErrors = append(b.deck.ParseErrors, entities.ParseError{BlockID: blockID, Message: message})
	return b
}

// Build returns the built deck
func (b *DeckBuilder) Build() *entities.SlideDeck {
	return b.deck
}
