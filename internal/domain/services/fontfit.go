package services

import (
	"math"
	"sync"
	"time"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

// Fit returns the largest font size in [floor, base] that keeps content of
// contentHeight (measured at base) inside viewportHeight. Non-positive inputs
// return base.
func Fit(contentHeight, viewportHeight float64, base, floor int) int {
	if contentHeight <= 0 || viewportHeight <= 0 {
		return base
	}

	scale := math.Min(1.0, viewportHeight/contentHeight)
	candidate := int(math.Round(float64(base) * scale))

	if candidate > base {
		candidate = base
	}
	if candidate < floor {
		candidate = floor
	}
	return candidate
}

// FontFitter applies Fit to slides and debounces resize-triggered refits
// through a single pending timer.
type FontFitter struct {
	base     int
	floor    int
	debounce time.Duration
	clock    ports.TimeProvider

	mu      sync.Mutex
	pending ports.Timer
	gen     uint64
}

// NewFontFitter creates a font fitter from presentation configuration
func NewFontFitter(cfg entities.PresentationConfig, clock ports.TimeProvider) *FontFitter {
	if clock == nil {
		clock = ports.NewRealTimeProvider()
	}
	return &FontFitter{
		base:     cfg.GetBaseFontSize(),
		floor:    cfg.GetMinFontSize(),
		debounce: cfg.GetResizeDebounce(),
		clock:    clock,
	}
}

// Fit computes the font size for a measurement
func (f *FontFitter) Fit(contentHeight, viewportHeight float64) int {
	return Fit(contentHeight, viewportHeight, f.base, f.floor)
}

// Apply computes the font size for a measurement and writes it to the slide.
// This is the only place a slide's font size changes.
func (f *FontFitter) Apply(slide *entities.Slide, contentHeight, viewportHeight float64) int {
	size := f.Fit(contentHeight, viewportHeight)
	slide.ApplyFontSize(size)
	return size
}

// Debounce schedules fn after the resize idle gap, replacing any pending call
func (f *FontFitter) Debounce(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending != nil {
		f.pending.Stop()
	}

	f.gen++
	gen := f.gen
	f.pending = f.clock.AfterFunc(f.debounce, func() {
		f.mu.Lock()
		if gen != f.gen {
			f.mu.Unlock()
			return
		}
		f.pending = nil
		f.mu.Unlock()
		fn()
	})
}

// Pending reports whether a debounced refit is scheduled
func (f *FontFitter) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending != nil
}

// Stop cancels any pending debounced refit
func (f *FontFitter) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending != nil {
		f.pending.Stop()
		f.pending = nil
	}
	f.gen++
}
