package ports

import (
	"context"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

// PresentationSession is the trigger contract between the host surface and the
// slide pipeline. One session presents one deck at a time.
type PresentationSession interface {
	// Start runs Extract, Detect, Segment and Assemble for identifier and opens navigation
	Start(ctx context.Context, identifier string) (*entities.SlideDeck, error)

	// Close tears down navigation and pending timers; it is idempotent
	Close() error

	// Deck returns the active deck or nil
	Deck() *entities.SlideDeck

	// Slide returns a copy of the slide at position in the active deck
	Slide(position int) (entities.Slide, error)

	// State returns the current navigation snapshot
	State() entities.NavigationState

	// Navigate applies a navigation action; index is used by ActionJump only
	Navigate(action entities.NavigationAction, index int) (entities.NavigationState, error)

	// HandleKey routes a host key event through the navigation controller
	HandleKey(event entities.KeyEvent) (entities.KeyResult, error)

	// Measure applies a font fit to the current slide from a fresh layout measurement
	Measure(contentHeight, viewportHeight float64) (int, error)

	// Resize schedules a debounced font fit after a viewport change
	Resize(contentHeight, viewportHeight float64) error

	// Subscribe registers a listener for session events and returns its cancel func
	Subscribe(fn func(UpdateEvent)) func()
}
