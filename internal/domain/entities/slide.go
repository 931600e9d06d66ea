package entities

import (
	"errors"
	"fmt"
)

// Density holds per-slide derived counts computed when the slide is created
type Density struct {
	BlockCount int  `json:"blockCount" yaml:"block_count"`
	WordCount  int  `json:"wordCount" yaml:"word_count"`
	HasImages  bool `json:"hasImages" yaml:"has_images"`
	HasCode    bool `json:"hasCode" yaml:"has_code"`
	HasLists   bool `json:"hasLists" yaml:"has_lists"`
}

// Slide represents a run of blocks grouped under one boundary heading
type Slide struct {
	// ID is unique within a deck
	ID string `json:"id" yaml:"id"`

	// Position is the 0-based slide position in the deck
	Position int `json:"position" yaml:"position"`

	// Title is the boundary heading text or a placeholder
	Title string `json:"title" yaml:"title"`

	// Blocks excludes the boundary heading that produced Title
	Blocks []ContentBlock `json:"blocks" yaml:"blocks"`

	// Density is computed once by NewSlide
	Density Density `json:"density" yaml:"density"`

	// FontSize starts at the base size and is only changed through ApplyFontSize
	FontSize int `json:"fontSize" yaml:"font_size"`
}

// NewSlide builds a slide and computes its density
func NewSlide(id string, position int, title string, blocks []ContentBlock, baseFontSize int) Slide {
	if blocks == nil {
		blocks = []ContentBlock{}
	}
	return Slide{
		ID:       id,
		Position: position,
		Title:    title,
		Blocks:   blocks,
		Density:  ComputeDensity(blocks),
		FontSize: baseFontSize,
	}
}

// ComputeDensity derives block/word counts and content-type flags
func ComputeDensity(blocks []ContentBlock) Density {
	d := Density{BlockCount: len(blocks)}
	for _, b := range blocks {
		d.WordCount += b.Words()
		switch {
		case b.Kind == BlockImage:
			d.HasImages = true
		case b.Kind == BlockCode:
			d.HasCode = true
		case b.Kind.IsList():
			d.HasLists = true
		}
	}
	return d
}

// ApplyFontSize overwrites the font size computed from a viewport measurement
func (s *Slide) ApplyFontSize(size int) {
	s.FontSize = size
}

// IsEmpty returns true if the slide has no blocks
func (s *Slide) IsEmpty() bool {
	return len(s.Blocks) == 0
}

// Validate ensures the slide and its blocks are well formed
func (s *Slide) Validate() error {
	if s.ID == "" {
		return errors.New("slide id cannot be empty")
	}

	if s.Position < 0 {
		return errors.New("slide position must be non-negative")
	}

	for _, b := range s.Blocks {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("slide %d: %w", s.Position, err)
		}
	}

	return nil
}
