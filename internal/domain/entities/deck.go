package entities

import (
	"errors"
	"fmt"
	"time"
)

// ErrSlideNotFound is returned for positions outside the deck
var ErrSlideNotFound = errors.New("slide not found")

// ParseError is a non-fatal problem recorded while extracting a document
type ParseError struct {
	BlockID   string    `json:"blockId,omitempty" yaml:"block_id,omitempty"`
	Message   string    `json:"message" yaml:"message"`
	BlockKind BlockKind `json:"blockKind,omitempty" yaml:"block_kind,omitempty"`
}

// SlideDeck is the complete artifact of one extraction and segmentation pass
type SlideDeck struct {
	ID               string       `json:"id" yaml:"id"`
	Title            string       `json:"title" yaml:"title"`
	SourceIdentifier string       `json:"sourceIdentifier" yaml:"source_identifier"`
	CreatedAt        time.Time    `json:"createdAt" yaml:"created_at"`
	Slides           []Slide      `json:"slides" yaml:"slides"`
	ParseErrors      []ParseError `json:"parseErrors,omitempty" yaml:"parse_errors,omitempty"`

	// BlockCount is the number of top-level blocks extracted before segmentation
	BlockCount int `json:"blockCount" yaml:"block_count"`
}

// SlideCount returns the total number of slides
func (d *SlideDeck) SlideCount() int {
	return len(d.Slides)
}

// GetSlide returns a slide by position (0-based)
func (d *SlideDeck) GetSlide(position int) (*Slide, error) {
	if position < 0 || position >= len(d.Slides) {
		return nil, fmt.Errorf("%w: position %d out of range (0-%d)", ErrSlideNotFound, position, len(d.Slides)-1)
	}
	return &d.Slides[position], nil
}

// Validate ensures the deck is internally consistent
func (d *SlideDeck) Validate() error {
	if d.ID == "" {
		return errors.New("deck id is required")
	}

	if len(d.Slides) == 0 {
		return errors.New("deck must have at least one slide")
	}

	seen := make(map[string]struct{}, len(d.Slides))
	for i := range d.Slides {
		slide := &d.Slides[i]
		if slide.Position != i {
			return fmt.Errorf("slide %d has position %d", i, slide.Position)
		}
		if _, dup := seen[slide.ID]; dup {
			return fmt.Errorf("duplicate slide id %s", slide.ID)
		}
		seen[slide.ID] = struct{}{}

		if err := slide.Validate(); err != nil {
			return fmt.Errorf("slide %d validation failed: %w", i+1, err)
		}
	}

	return nil
}
