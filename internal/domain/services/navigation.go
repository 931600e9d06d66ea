package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

var (
	// ErrSessionClosed is returned by navigation calls outside an open session
	ErrSessionClosed = errors.New("presentation session is closed")

	// ErrAlreadyOpen is returned when Open is called on an open controller
	ErrAlreadyOpen = errors.New("presentation session already open")
)

// maxDigits bounds the jump buffer; longer input would only saturate anyway
const maxDigits = 6

// NavigationController tracks the current slide of one presentation session.
// Every mutation is serialized; the digit-buffer timer fires on its own
// goroutine and takes the same lock.
type NavigationController struct {
	clock        ports.TimeProvider
	digitTimeout time.Duration
	logger       *slog.Logger

	mu         sync.Mutex
	open       bool
	index      int
	count      int
	digits     []byte
	digitTimer ports.Timer
	digitGen   uint64
	onChange   func(entities.NavigationState)
}

// NewNavigationController creates a closed controller
func NewNavigationController(cfg entities.PresentationConfig, clock ports.TimeProvider, logger *slog.Logger) *NavigationController {
	if clock == nil {
		clock = ports.NewRealTimeProvider()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NavigationController{
		clock:        clock,
		digitTimeout: cfg.GetDigitTimeout(),
		logger:       logger.With("component", "navigation"),
	}
}

// OnChange registers the listener called after the index changes or the
// session closes. It runs outside the controller lock.
func (c *NavigationController) OnChange(fn func(entities.NavigationState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Open starts a session over slideCount slides at index 0
func (c *NavigationController) Open(slideCount int) error {
	if slideCount < 1 {
		return fmt.Errorf("cannot open presentation with %d slides", slideCount)
	}

	c.mu.Lock()
	if c.open {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.open = true
	c.index = 0
	c.count = slideCount
	c.digits = c.digits[:0]
	state := c.stateLocked()
	fn := c.onChange
	c.mu.Unlock()

	c.logger.Debug("presentation opened", slog.Int("slides", slideCount))
	if fn != nil {
		fn(state)
	}
	return nil
}

// State returns a snapshot of the navigation state
func (c *NavigationController) State() entities.NavigationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Buffer returns the pending jump digits
func (c *NavigationController) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.digits)
}

// Next advances one slide; it stays on the last slide
func (c *NavigationController) Next() (entities.NavigationState, error) {
	return c.move(func(i, _ int) int { return i + 1 })
}

// Previous goes back one slide; it stays on the first slide
func (c *NavigationController) Previous() (entities.NavigationState, error) {
	return c.move(func(i, _ int) int { return i - 1 })
}

// First jumps to the first slide
func (c *NavigationController) First() (entities.NavigationState, error) {
	return c.move(func(_, _ int) int { return 0 })
}

// Last jumps to the last slide
func (c *NavigationController) Last() (entities.NavigationState, error) {
	return c.move(func(_, n int) int { return n - 1 })
}

// JumpTo moves to index, clamped into the deck
func (c *NavigationController) JumpTo(index int) (entities.NavigationState, error) {
	return c.move(func(_, _ int) int { return index })
}

// Close ends the session, clearing the digit buffer and its timer. Calls
// after the first return false.
func (c *NavigationController) Close() bool {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return false
	}
	c.open = false
	c.clearDigitsLocked()
	state := c.stateLocked()
	fn := c.onChange
	c.mu.Unlock()

	c.logger.Debug("presentation closed")
	if fn != nil {
		fn(state)
	}
	return true
}

// HandleKey applies a host key event. Events from editable controls and
// events after close have no effect.
func (c *NavigationController) HandleKey(event entities.KeyEvent) entities.KeyResult {
	if event.InEditable() {
		return entities.KeyResult{State: c.State(), Buffer: c.Buffer()}
	}

	key := event.Key
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return c.pushDigit(key[0])
	}

	action, ok := keyActions[key]
	if !ok {
		if key == "Enter" {
			return c.confirmDigits()
		}
		return entities.KeyResult{State: c.State(), Buffer: c.Buffer()}
	}

	var (
		state entities.NavigationState
		err   error
	)
	switch action {
	case entities.ActionNext:
		state, err = c.Next()
	case entities.ActionPrevious:
		state, err = c.Previous()
	case entities.ActionFirst:
		state, err = c.First()
	case entities.ActionLast:
		state, err = c.Last()
	case entities.ActionClose:
		if !c.Close() {
			err = ErrSessionClosed
		}
		state = c.State()
	}
	if err != nil {
		return entities.KeyResult{State: state}
	}
	return entities.KeyResult{Handled: true, Action: action, State: state, Buffer: c.Buffer()}
}

var keyActions = map[string]entities.NavigationAction{
	"ArrowRight": entities.ActionNext,
	"ArrowDown":  entities.ActionNext,
	"PageDown":   entities.ActionNext,
	" ":          entities.ActionNext,
	"Space":      entities.ActionNext,
	"Spacebar":   entities.ActionNext,
	"n":          entities.ActionNext,
	"ArrowLeft":  entities.ActionPrevious,
	"ArrowUp":    entities.ActionPrevious,
	"PageUp":     entities.ActionPrevious,
	"Backspace":  entities.ActionPrevious,
	"p":          entities.ActionPrevious,
	"Home":       entities.ActionFirst,
	"End":        entities.ActionLast,
	"Escape":     entities.ActionClose,
	"q":          entities.ActionClose,
}

func (c *NavigationController) pushDigit(d byte) entities.KeyResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return entities.KeyResult{State: c.stateLocked()}
	}

	if len(c.digits) < maxDigits {
		c.digits = append(c.digits, d)
	}

	// one pending timer: replace on every digit
	if c.digitTimer != nil {
		c.digitTimer.Stop()
	}
	c.digitGen++
	gen := c.digitGen
	c.digitTimer = c.clock.AfterFunc(c.digitTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.digitGen {
			return
		}
		c.logger.Debug("jump buffer expired", slog.String("digits", string(c.digits)))
		c.digits = c.digits[:0]
		c.digitTimer = nil
	})

	return entities.KeyResult{Handled: true, Buffer: string(c.digits), State: c.stateLocked()}
}

func (c *NavigationController) confirmDigits() entities.KeyResult {
	c.mu.Lock()
	if !c.open || len(c.digits) == 0 {
		state := c.stateLocked()
		c.mu.Unlock()
		return entities.KeyResult{State: state}
	}
	number, err := strconv.Atoi(string(c.digits))
	c.clearDigitsLocked()
	c.mu.Unlock()

	if err != nil {
		return entities.KeyResult{State: c.State()}
	}

	state, err := c.JumpTo(number - 1)
	if err != nil {
		return entities.KeyResult{State: state}
	}
	return entities.KeyResult{Handled: true, Action: entities.ActionJump, State: state}
}

func (c *NavigationController) move(target func(index, count int) int) (entities.NavigationState, error) {
	c.mu.Lock()
	if !c.open {
		state := c.stateLocked()
		c.mu.Unlock()
		return state, ErrSessionClosed
	}

	next := clamp(target(c.index, c.count), 0, c.count-1)
	changed := next != c.index
	c.index = next
	state := c.stateLocked()
	fn := c.onChange
	c.mu.Unlock()

	if changed && fn != nil {
		fn(state)
	}
	return state, nil
}

func (c *NavigationController) clearDigitsLocked() {
	if c.digitTimer != nil {
		c.digitTimer.Stop()
		c.digitTimer = nil
	}
	c.digitGen++
	c.digits = c.digits[:0]
}

func (c *NavigationController) stateLocked() entities.NavigationState {
	return entities.NavigationState{CurrentIndex: c.index, SlideCount: c.count, IsOpen: c.open}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
