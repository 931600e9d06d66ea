package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
	"github.com/zorro901/presenotion/internal/test/builders"
	"github.com/zorro901/presenotion/internal/test/clock"
)

const notionURL = "https://www.notion.so/team/Roadmap-0123456789abcdef"

// eventLog records session events
type eventLog struct {
	mu     sync.Mutex
	events []ports.UpdateEvent
}

func (l *eventLog) record(e ports.UpdateEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) types() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

func (l *eventLog) last() ports.UpdateEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events[len(l.events)-1]
}

type sessionFixture struct {
	session *PresentationSession
	source  *MockSource
	ext     *MockExtractor
	clock   *clock.FakeTimeProvider
	events  *eventLog
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		source: new(MockSource),
		ext:    new(MockExtractor),
		clock:  clock.NewFakeTimeProvider(epoch),
		events: &eventLog{},
	}
	f.session = NewPresentationSession(f.source, f.ext, entities.Config{}, f.clock, nil)
	f.session.Subscribe(f.events.record)
	return f
}

// expectPage wires a recognized page that extracts to blocks
func (f *sessionFixture) expectPage(identifier string, blocks []entities.ContentBlock) {
	doc := testDocument(identifier)
	f.source.On("Supports", identifier).Return(true)
	f.source.On("Fetch", mock.Anything, identifier).Return(doc, nil)
	f.ext.On("Recognizes", doc.Root).Return(true)
	f.ext.On("Extract", doc.Root).Return(extracted(blocks))
}

func threeSlides() []entities.ContentBlock {
	return builders.NewBlocksBuilder().
		Heading(2, "One").Paragraph("a").
		Heading(2, "Two").Paragraph("b").
		Heading(2, "Three").Paragraph("c").
		Build()
}

func TestSessionStart(t *testing.T) {
	f := newSessionFixture(t)
	f.expectPage(notionURL, threeSlides())

	deck, err := f.session.Start(context.Background(), notionURL)

	require.NoError(t, err)
	assert.Equal(t, 3, deck.SlideCount())
	assert.Equal(t, entities.NavigationState{CurrentIndex: 0, SlideCount: 3, IsOpen: true}, f.session.State())
	assert.Equal(t, []string{ports.EventTypeDeck, ports.EventTypeNavigate}, f.events.types())

	slide, err := f.session.Slide(1)
	require.NoError(t, err)
	assert.Equal(t, "Two", slide.Title)

	_, err = f.session.Slide(3)
	assert.ErrorIs(t, err, entities.ErrSlideNotFound)
}

func TestSessionStartHostErrors(t *testing.T) {
	t.Run("wrong domain URL", func(t *testing.T) {
		f := newSessionFixture(t)

		_, err := f.session.Start(context.Background(), "https://example.com/page")

		assert.True(t, entities.IsHostError(err, entities.HostErrorWrongDomain))
		f.source.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("unrecognized page tree", func(t *testing.T) {
		f := newSessionFixture(t)
		doc := testDocument(notionURL)
		f.source.On("Supports", notionURL).Return(true)
		f.source.On("Fetch", mock.Anything, notionURL).Return(doc, nil)
		f.ext.On("Recognizes", doc.Root).Return(false)

		_, err := f.session.Start(context.Background(), notionURL)

		assert.True(t, entities.IsHostError(err, entities.HostErrorWrongDomain))
	})

	t.Run("zero blocks on a notion page", func(t *testing.T) {
		f := newSessionFixture(t)
		f.expectPage(notionURL, nil)

		_, err := f.session.Start(context.Background(), notionURL)

		assert.True(t, entities.IsHostError(err, entities.HostErrorNoContent))
		assert.Nil(t, f.session.Deck())
	})

	t.Run("traversal failure", func(t *testing.T) {
		f := newSessionFixture(t)
		doc := testDocument(notionURL)
		f.source.On("Supports", notionURL).Return(true)
		f.source.On("Fetch", mock.Anything, notionURL).Return(doc, nil)
		f.ext.On("Recognizes", doc.Root).Return(true)
		f.ext.On("Extract", doc.Root).Return(ports.ExtractionResult{Fatal: entities.ErrUnableToParse})

		_, err := f.session.Start(context.Background(), notionURL)

		var hostErr *entities.HostError
		require.ErrorAs(t, err, &hostErr)
		assert.Equal(t, entities.HostErrorUnableToParse, hostErr.Kind)
		assert.Equal(t, "Unable to parse content.", hostErr.Message)
		assert.ErrorIs(t, err, entities.ErrUnableToParse)
	})

	t.Run("fetch failure is not a host error", func(t *testing.T) {
		f := newSessionFixture(t)
		f.source.On("Supports", notionURL).Return(true)
		f.source.On("Fetch", mock.Anything, notionURL).Return(nil, errors.New("timeout"))

		_, err := f.session.Start(context.Background(), notionURL)

		require.Error(t, err)
		assert.False(t, entities.IsHostError(err, entities.HostErrorWrongDomain))
		assert.Contains(t, err.Error(), "loading document")
	})

	t.Run("empty identifier", func(t *testing.T) {
		f := newSessionFixture(t)
		_, err := f.session.Start(context.Background(), "  ")
		assert.Error(t, err)
	})
}

func TestSessionStartLocalFileFallsBack(t *testing.T) {
	f := newSessionFixture(t)
	doc := testDocument("notes.md")
	f.source.On("Supports", "notes.md").Return(true)
	f.source.On("Fetch", mock.Anything, "notes.md").Return(doc, nil)
	f.ext.On("Extract", doc.Root).Return(extracted(nil))

	deck, err := f.session.Start(context.Background(), "notes.md")

	require.NoError(t, err)
	require.Equal(t, 1, deck.SlideCount())
	assert.Equal(t, entities.DefaultEmptyTitle, deck.Slides[0].Title)
}

func TestSessionRequiresOpenPresentation(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.session.Navigate(entities.ActionNext, 0)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = f.session.HandleKey(entities.KeyEvent{Key: "ArrowRight"})
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = f.session.Measure(100, 100)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, f.session.Resize(100, 100), ErrNoSession)
	_, err = f.session.Slide(0)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, f.session.Close())
	assert.Equal(t, entities.NavigationState{}, f.session.State())
}

func TestSessionNavigate(t *testing.T) {
	f := newSessionFixture(t)
	f.expectPage(notionURL, threeSlides())
	_, err := f.session.Start(context.Background(), notionURL)
	require.NoError(t, err)

	state, err := f.session.Navigate(entities.ActionJump, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentIndex)
	assert.Equal(t, ports.EventTypeNavigate, f.events.last().Type)
	assert.Equal(t, state, f.events.last().Data)

	state, _ = f.session.Navigate(entities.ActionPrevious, 0)
	assert.Equal(t, 1, state.CurrentIndex)

	_, err = f.session.Navigate("sideways", 0)
	assert.Error(t, err)

	_, err = f.session.Navigate(entities.ActionClose, 0)
	require.NoError(t, err)
	assert.Nil(t, f.session.Deck())
	assert.Equal(t, ports.EventTypeClosed, f.events.last().Type)
}

func TestSessionMeasureWritesCurrentSlideOnly(t *testing.T) {
	f := newSessionFixture(t)
	f.expectPage(notionURL, threeSlides())
	_, err := f.session.Start(context.Background(), notionURL)
	require.NoError(t, err)

	_, _ = f.session.Navigate(entities.ActionNext, 0)
	size, err := f.session.Measure(1000, 500)
	require.NoError(t, err)
	assert.Equal(t, 12, size)

	deck := f.session.Deck()
	assert.Equal(t, entities.DefaultBaseFontSize, deck.Slides[0].FontSize)
	assert.Equal(t, 12, deck.Slides[1].FontSize)
	assert.Equal(t, entities.DefaultBaseFontSize, deck.Slides[2].FontSize)

	event := f.events.last()
	assert.Equal(t, ports.EventTypeFontSize, event.Type)
	assert.Equal(t, map[string]int{"position": 1, "fontSize": 12}, event.Data)
}

func TestSessionResizeDebounces(t *testing.T) {
	f := newSessionFixture(t)
	f.expectPage(notionURL, threeSlides())
	_, err := f.session.Start(context.Background(), notionURL)
	require.NoError(t, err)

	require.NoError(t, f.session.Resize(1000, 900))
	f.clock.Advance(100 * time.Millisecond)
	require.NoError(t, f.session.Resize(1000, 600))
	f.clock.Advance(299 * time.Millisecond)

	slide, _ := f.session.Slide(0)
	assert.Equal(t, entities.DefaultBaseFontSize, slide.FontSize)

	f.clock.Advance(time.Millisecond)
	slide, _ = f.session.Slide(0)
	assert.Equal(t, 14, slide.FontSize, "only the last measurement applies")
}

func TestSessionCloseCancelsTimers(t *testing.T) {
	f := newSessionFixture(t)
	f.expectPage(notionURL, threeSlides())
	_, err := f.session.Start(context.Background(), notionURL)
	require.NoError(t, err)

	_, err = f.session.HandleKey(entities.KeyEvent{Key: "2"})
	require.NoError(t, err)
	require.NoError(t, f.session.Resize(1000, 500))
	require.Equal(t, 2, f.clock.Pending())

	require.NoError(t, f.session.Close())
	require.NoError(t, f.session.Close())

	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, entities.NavigationState{}, f.session.State())

	closed := 0
	for _, typ := range f.events.types() {
		if typ == ports.EventTypeClosed {
			closed++
		}
	}
	assert.Equal(t, 1, closed)

	_, err = f.session.HandleKey(entities.KeyEvent{Key: "ArrowRight"})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionEscapeKeyTearsDown(t *testing.T) {
	f := newSessionFixture(t)
	f.expectPage(notionURL, threeSlides())
	_, err := f.session.Start(context.Background(), notionURL)
	require.NoError(t, err)

	result, err := f.session.HandleKey(entities.KeyEvent{Key: "Escape"})
	require.NoError(t, err)
	assert.True(t, result.Handled)
	assert.Nil(t, f.session.Deck())
	assert.Equal(t, ports.EventTypeClosed, f.events.last().Type)
}

func TestSessionRestartReplacesDeck(t *testing.T) {
	f := newSessionFixture(t)
	other := "https://acme.notion.site/Other-1"
	f.expectPage(notionURL, threeSlides())
	f.expectPage(other, builders.NewBlocksBuilder().Paragraph("solo").Build())

	first, err := f.session.Start(context.Background(), notionURL)
	require.NoError(t, err)
	_, _ = f.session.Navigate(entities.ActionLast, 0)

	second, err := f.session.Start(context.Background(), other)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, entities.NavigationState{CurrentIndex: 0, SlideCount: 1, IsOpen: true}, f.session.State())
	assert.Contains(t, f.events.types(), ports.EventTypeClosed)
}

func TestSessionDeckIsSnapshot(t *testing.T) {
	f := newSessionFixture(t)
	f.expectPage(notionURL, threeSlides())
	_, err := f.session.Start(context.Background(), notionURL)
	require.NoError(t, err)

	deck := f.session.Deck()
	deck.Slides[0].Title = "mutated"

	slide, err := f.session.Slide(0)
	require.NoError(t, err)
	assert.Equal(t, "One", slide.Title)
}

func TestSessionUnsubscribe(t *testing.T) {
	f := newSessionFixture(t)
	log := &eventLog{}
	cancel := f.session.Subscribe(log.record)
	cancel()

	f.expectPage(notionURL, threeSlides())
	_, err := f.session.Start(context.Background(), notionURL)
	require.NoError(t, err)

	assert.Empty(t, log.types())
}
