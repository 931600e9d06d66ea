package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

// ErrNoSession is returned when an operation needs an open presentation
var ErrNoSession = errors.New("no presentation session is open")

// PresentationSession owns the deck, navigation controller and font fitter of
// the active presentation
type PresentationSession struct {
	source    ports.DocumentSource
	extractor ports.BlockExtractor
	assembler *DeckAssembler
	cfg       entities.Config
	clock     ports.TimeProvider
	logger    *slog.Logger

	mu        sync.Mutex
	deck      *entities.SlideDeck
	nav       *NavigationController
	fitter    *FontFitter
	listeners map[int]func(ports.UpdateEvent)
	nextID    int
}

// NewPresentationSession creates a session service with no open presentation
func NewPresentationSession(
	source ports.DocumentSource,
	extractor ports.BlockExtractor,
	cfg entities.Config,
	clock ports.TimeProvider,
	logger *slog.Logger,
) *PresentationSession {
	if clock == nil {
		clock = ports.NewRealTimeProvider()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PresentationSession{
		source:    source,
		extractor: extractor,
		assembler: NewDeckAssembler(extractor, cfg.Presentation, clock, logger),
		cfg:       cfg,
		clock:     clock,
		logger:    logger.With("service", "session"),
		listeners: make(map[int]func(ports.UpdateEvent)),
	}
}

// Start loads identifier, assembles a deck and opens navigation on it. Any
// previous presentation is closed first. Precondition failures are returned
// as *entities.HostError.
func (s *PresentationSession) Start(ctx context.Context, identifier string) (*entities.SlideDeck, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, errors.New("source identifier cannot be empty")
	}

	pageURL, isURL := parseWebURL(identifier)
	if isURL && !s.cfg.Source.IsAllowedHost(pageURL.Hostname()) {
		s.logger.Warn("refusing non-Notion page", slog.String("host", pageURL.Hostname()))
		return nil, entities.NewHostError(entities.HostErrorWrongDomain, nil)
	}

	if !s.source.Supports(identifier) {
		return nil, fmt.Errorf("no document source for %s", identifier)
	}

	doc, err := s.source.Fetch(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}

	if isURL && !s.extractor.Recognizes(doc.Root) {
		return nil, entities.NewHostError(entities.HostErrorWrongDomain, nil)
	}

	deck, result := s.assembler.Assemble(ctx, doc)
	if result.Fatal != nil {
		return nil, entities.NewHostError(entities.HostErrorUnableToParse, result.Fatal)
	}
	if isURL && len(result.Blocks) == 0 {
		return nil, entities.NewHostError(entities.HostErrorNoContent, nil)
	}

	_ = s.Close()

	nav := NewNavigationController(s.cfg.Presentation, s.clock, s.logger)
	nav.OnChange(func(state entities.NavigationState) { s.handleNavigation(nav, state) })

	s.mu.Lock()
	s.deck = deck
	s.nav = nav
	s.fitter = NewFontFitter(s.cfg.Presentation, s.clock)
	s.mu.Unlock()

	s.emit(ports.EventTypeDeck, deckSummary(deck))

	if err := nav.Open(deck.SlideCount()); err != nil {
		return nil, fmt.Errorf("opening navigation: %w", err)
	}

	return s.Deck(), nil
}

// Close ends the active presentation. It is safe to call repeatedly.
func (s *PresentationSession) Close() error {
	s.mu.Lock()
	nav := s.nav
	s.mu.Unlock()

	if nav == nil {
		return nil
	}

	if !nav.Close() {
		// already closed by a key event; make sure teardown happened
		s.teardown(nav)
	}
	return nil
}

// Deck returns a snapshot of the active deck, or nil
func (s *PresentationSession) Deck() *entities.SlideDeck {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deck == nil {
		return nil
	}
	snapshot := *s.deck
	snapshot.Slides = append([]entities.Slide(nil), s.deck.Slides...)
	return &snapshot
}

// Slide returns a copy of the slide at position
func (s *PresentationSession) Slide(position int) (entities.Slide, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deck == nil {
		return entities.Slide{}, ErrNoSession
	}
	slide, err := s.deck.GetSlide(position)
	if err != nil {
		return entities.Slide{}, err
	}
	return *slide, nil
}

// State returns the current navigation snapshot
func (s *PresentationSession) State() entities.NavigationState {
	s.mu.Lock()
	nav := s.nav
	s.mu.Unlock()

	if nav == nil {
		return entities.NavigationState{}
	}
	return nav.State()
}

// Navigate applies a navigation action. index is only used by ActionJump.
func (s *PresentationSession) Navigate(action entities.NavigationAction, index int) (entities.NavigationState, error) {
	nav, err := s.controller()
	if err != nil {
		return entities.NavigationState{}, err
	}

	switch action {
	case entities.ActionNext:
		return nav.Next()
	case entities.ActionPrevious:
		return nav.Previous()
	case entities.ActionFirst:
		return nav.First()
	case entities.ActionLast:
		return nav.Last()
	case entities.ActionJump:
		return nav.JumpTo(index)
	case entities.ActionClose:
		if err := s.Close(); err != nil {
			return entities.NavigationState{}, err
		}
		return entities.NavigationState{}, nil
	default:
		return nav.State(), fmt.Errorf("unknown navigation action: %q", action)
	}
}

// HandleKey routes a key event to the navigation controller
func (s *PresentationSession) HandleKey(event entities.KeyEvent) (entities.KeyResult, error) {
	nav, err := s.controller()
	if err != nil {
		return entities.KeyResult{}, err
	}
	return nav.HandleKey(event), nil
}

// Measure fits the current slide's font to a layout measurement taken at the
// base font size
func (s *PresentationSession) Measure(contentHeight, viewportHeight float64) (int, error) {
	s.mu.Lock()
	if s.nav == nil || s.deck == nil {
		s.mu.Unlock()
		return 0, ErrNoSession
	}
	position := s.nav.State().CurrentIndex
	slide := &s.deck.Slides[position]
	size := s.fitter.Apply(slide, contentHeight, viewportHeight)
	s.mu.Unlock()

	s.emit(ports.EventTypeFontSize, map[string]int{"position": position, "fontSize": size})
	return size, nil
}

// Resize schedules a refit once the viewport stops changing
func (s *PresentationSession) Resize(contentHeight, viewportHeight float64) error {
	s.mu.Lock()
	fitter := s.fitter
	s.mu.Unlock()

	if fitter == nil {
		return ErrNoSession
	}

	fitter.Debounce(func() {
		if _, err := s.Measure(contentHeight, viewportHeight); err != nil && !errors.Is(err, ErrNoSession) {
			s.logger.Warn("debounced refit failed", slog.String("error", err.Error()))
		}
	})
	return nil
}

// Subscribe registers fn for session events
func (s *PresentationSession) Subscribe(fn func(ports.UpdateEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *PresentationSession) controller() (*NavigationController, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nav == nil {
		return nil, ErrNoSession
	}
	return s.nav, nil
}

func (s *PresentationSession) handleNavigation(nav *NavigationController, state entities.NavigationState) {
	if !state.IsOpen {
		s.teardown(nav)
		return
	}
	s.emit(ports.EventTypeNavigate, state)
}

// teardown discards the session owned by nav; stale controllers are ignored
func (s *PresentationSession) teardown(nav *NavigationController) {
	s.mu.Lock()
	if s.nav != nav {
		s.mu.Unlock()
		return
	}
	if s.fitter != nil {
		s.fitter.Stop()
	}
	deckID := ""
	if s.deck != nil {
		deckID = s.deck.ID
	}
	s.nav = nil
	s.fitter = nil
	s.deck = nil
	s.mu.Unlock()

	s.logger.Info("presentation closed", slog.String("deck_id", deckID))
	s.emit(ports.EventTypeClosed, map[string]string{"deckId": deckID})
}

func (s *PresentationSession) emit(eventType string, data interface{}) {
	event := ports.UpdateEvent{Type: eventType, Timestamp: s.clock.Now(), Data: data}

	s.mu.Lock()
	fns := make([]func(ports.UpdateEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// parseWebURL returns the URL when identifier is an http(s) address
func parseWebURL(identifier string) (*url.URL, bool) {
	u, err := url.Parse(identifier)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, false
	}
	return u, true
}

func deckSummary(deck *entities.SlideDeck) map[string]interface{} {
	titles := make([]string, 0, len(deck.Slides))
	for _, slide := range deck.Slides {
		titles = append(titles, slide.Title)
	}
	return map[string]interface{}{
		"id":         deck.ID,
		"title":      deck.Title,
		"slideCount": deck.SlideCount(),
		"titles":     titles,
	}
}

var _ ports.PresentationSession = (*PresentationSession)(nil)
