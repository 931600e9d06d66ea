package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeck(n int) *SlideDeck {
	deck := &SlideDeck{ID: "deck"}
	for i := 0; i < n; i++ {
		deck.Slides = append(deck.Slides, NewSlide(string(rune('a'+i)), i, "T", nil, 24))
	}
	return deck
}

func TestSlideDeckGetSlide(t *testing.T) {
	deck := testDeck(3)

	slide, err := deck.GetSlide(2)
	require.NoError(t, err)
	assert.Equal(t, 2, slide.Position)

	for _, pos := range []int{-1, 3} {
		_, err := deck.GetSlide(pos)
		assert.ErrorIs(t, err, ErrSlideNotFound)
	}
	assert.Equal(t, 3, deck.SlideCount())
}

func TestSlideDeckValidate(t *testing.T) {
	require.NoError(t, testDeck(3).Validate())

	tests := []struct {
		name   string
		mutate func(d *SlideDeck)
		want   string
	}{
		{"missing id", func(d *SlideDeck) { d.ID = "" }, "deck id is required"},
		{"no slides", func(d *SlideDeck) { d.Slides = nil }, "at least one slide"},
		{"position gap", func(d *SlideDeck) { d.Slides[1].Position = 5 }, "has position 5"},
		{"duplicate id", func(d *SlideDeck) { d.Slides[2].ID = d.Slides[0].ID }, "duplicate slide id"},
		{"invalid slide", func(d *SlideDeck) { d.Slides[0].ID = "" }, "slide 1 validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck := testDeck(3)
			tt.mutate(deck)
			err := deck.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
