// Package monitoring keeps running counters for a presentation server.
package monitoring

import (
	"math"
	"runtime"
	"sync"
	"time"
)

// Stats is a point-in-time copy of the collected metrics
type Stats struct {
	StartedAt time.Time `json:"startedAt"`
	Uptime    string    `json:"uptime"`

	HTTPRequests        int64 `json:"httpRequests"`
	HTTPErrors          int64 `json:"httpErrors"`
	WebSocketsOpen      int64 `json:"webSocketsOpen"`
	WebSocketsTotal     int64 `json:"webSocketsTotal"`
	DecksStarted        int64 `json:"decksStarted"`
	DeckStartFailures   int64 `json:"deckStartFailures"`
	RenderCount         int64 `json:"renderCount"`
	AverageRenderMillis int64 `json:"averageRenderMs"`

	MemoryMB   int64  `json:"memoryMb"`
	HeapMB     int64  `json:"heapMb"`
	Goroutines int    `json:"goroutines"`
	GCCycles   uint32 `json:"gcCycles"`
}

// PerformanceMonitor records request, connection and render activity
type PerformanceMonitor struct {
	mu                sync.Mutex
	startedAt         time.Time
	httpRequests      int64
	httpErrors        int64
	wsOpen            int64
	wsTotal           int64
	decksStarted      int64
	deckStartFailures int64
	renderCount       int64
	averageRender     time.Duration
	now               func() time.Time
}

// NewPerformanceMonitor creates a monitor whose uptime starts now
func NewPerformanceMonitor() *PerformanceMonitor {
	return &PerformanceMonitor{startedAt: time.Now(), now: time.Now}
}

// RecordHTTPRequest records an HTTP request
func (pm *PerformanceMonitor) RecordHTTPRequest() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.httpRequests++
}

// RecordHTTPStatus counts responses with a client or server error status
func (pm *PerformanceMonitor) RecordHTTPStatus(status int) {
	if status < 400 {
		return
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.httpErrors++
}

// RecordWebSocketOpen records a new WebSocket client
func (pm *PerformanceMonitor) RecordWebSocketOpen() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.wsOpen++
	pm.wsTotal++
}

// RecordWebSocketClose records a WebSocket client going away
func (pm *PerformanceMonitor) RecordWebSocketClose() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.wsOpen > 0 {
		pm.wsOpen--
	}
}

// RecordDeckStart records the outcome of starting a presentation
func (pm *PerformanceMonitor) RecordDeckStart(err error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if err != nil {
		pm.deckStartFailures++
		return
	}
	pm.decksStarted++
}

// RecordRender records a page or slide render
func (pm *PerformanceMonitor) RecordRender(duration time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.renderCount++

	// Exponential moving average
	if pm.averageRender == 0 {
		pm.averageRender = duration
		return
	}
	alpha := 0.1
	pm.averageRender = time.Duration(float64(pm.averageRender)*(1-alpha) + float64(duration)*alpha)
}

// Snapshot returns the counters together with current runtime memory figures
func (pm *PerformanceMonitor) Snapshot() Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	pm.mu.Lock()
	defer pm.mu.Unlock()

	return Stats{
		StartedAt:           pm.startedAt,
		Uptime:              pm.now().Sub(pm.startedAt).Round(time.Second).String(),
		HTTPRequests:        pm.httpRequests,
		HTTPErrors:          pm.httpErrors,
		WebSocketsOpen:      pm.wsOpen,
		WebSocketsTotal:     pm.wsTotal,
		DecksStarted:        pm.decksStarted,
		DeckStartFailures:   pm.deckStartFailures,
		RenderCount:         pm.renderCount,
		AverageRenderMillis: pm.averageRender.Milliseconds(),
		MemoryMB:            safeUint64ToInt64(mem.Alloc) / (1024 * 1024),
		HeapMB:              safeUint64ToInt64(mem.HeapAlloc) / (1024 * 1024),
		Goroutines:          runtime.NumGoroutine(),
		GCCycles:            mem.NumGC,
	}
}

// safeUint64ToInt64 safely converts uint64 to int64, capping at max int64 value
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}
