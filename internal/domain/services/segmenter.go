package services

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

// Segmenter partitions a block stream into slides at boundary headings
type Segmenter struct {
	DefaultTitle string
	EmptyTitle   string
	EmptyMessage string
	BaseFontSize int
}

// NewSegmenter creates a segmenter from presentation configuration
func NewSegmenter(cfg entities.PresentationConfig) *Segmenter {
	return &Segmenter{
		DefaultTitle: cfg.GetDefaultTitle(),
		EmptyTitle:   cfg.GetEmptyTitle(),
		EmptyMessage: cfg.GetEmptyMessage(),
		BaseFontSize: cfg.GetBaseFontSize(),
	}
}

// Segment groups blocks under boundary headings at level. Content before the
// first boundary heading becomes a slide under the default title. When ok is
// false every block lands on a single slide. The result is never empty.
// Slide ids are qualified by deckID.
func (s *Segmenter) Segment(deckID string, blocks []entities.ContentBlock, level int, ok bool) []entities.Slide {
	var (
		slides      []entities.Slide
		buffer      []entities.ContentBlock
		title       = s.DefaultTitle
		seenHeading bool
	)

	flush := func() {
		pos := len(slides)
		slides = append(slides, entities.NewSlide(slideID(deckID, pos), pos, title, buffer, s.BaseFontSize))
		buffer = nil
	}

	for _, b := range blocks {
		if ok && b.IsHeading(level) {
			if len(buffer) > 0 || seenHeading {
				flush()
			}
			title = b.Text
			seenHeading = true
			continue
		}
		buffer = append(buffer, b)
	}

	if len(buffer) > 0 || seenHeading {
		flush()
	}

	if len(slides) == 0 {
		return []entities.Slide{s.Fallback(deckID)}
	}

	return slides
}

// Fallback returns the single slide shown when a document has no content
func (s *Segmenter) Fallback(deckID string) entities.Slide {
	owner := deckID
	if owner == "" {
		owner = uuid.NewString()[:8]
	}
	msg := entities.NewParagraph("blk-"+owner+"-empty", s.EmptyMessage, nil)
	return entities.NewSlide(slideID(deckID, 0), 0, s.EmptyTitle, []entities.ContentBlock{msg}, s.BaseFontSize)
}

func slideID(deckID string, position int) string {
	id := "slide-" + strconv.Itoa(position+1)
	if deckID == "" {
		return id
	}
	return deckID + "-" + id
}
