// Package watcher polls local documents so a served deck can follow edits.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zorro901/presenotion/internal/domain/ports"
)

// PollingWatcher implements file watching using polling. Changes are
// reported once the file has been quiet for the debounce period, so a burst
// of saves produces a single event carrying the final state.
type PollingWatcher struct {
	interval time.Duration
	debounce time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	snapshot *fileState
	events   chan ports.FileChangeEvent
	watching bool
	stopped  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// fileState is what a poll compares against; nil means the file is absent
type fileState struct {
	Size     int64
	ModTime  time.Time
	Checksum string
}

// NewPollingWatcher creates a new polling-based file watcher
func NewPollingWatcher(interval, debounce time.Duration, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingWatcher{
		interval: interval,
		debounce: debounce,
		logger:   logger.With("component", "watcher"),
		events:   make(chan ports.FileChangeEvent, 10),
		stopCh:   make(chan struct{}),
	}
}

// Watch starts watching path. A watcher follows a single file.
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	state, err := scan(absPath)
	if err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}
	if state == nil {
		return nil, fmt.Errorf("initial scan: %w", fs.ErrNotExist)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil, errors.New("watcher stopped")
	}
	if w.watching {
		return nil, errors.New("already watching")
	}
	w.watching = true
	w.snapshot = state

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollLoop(ctx, absPath)
	}()

	return w.events, nil
}

// Stop stops the poll loop and closes the event channel
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)

	return nil
}

// pollLoop checks the file every interval and emits debounced changes
func (w *PollingWatcher) pollLoop(ctx context.Context, path string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var (
		pending    bool
		pendingTyp ports.ChangeType
		lastChange time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			typ, changed, err := w.checkForChanges(path)
			if err != nil {
				w.logger.Warn("watch error", "path", path, "error", err)
				continue
			}

			now := time.Now()
			if changed {
				// A deletion followed by a recreation inside one window is an edit.
				if pending && pendingTyp == ports.Deleted && typ == ports.Created {
					typ = ports.Modified
				}
				pending, pendingTyp, lastChange = true, typ, now
				continue
			}

			if !pending || now.Sub(lastChange) < w.debounce {
				continue
			}

			event := ports.FileChangeEvent{Path: path, Type: pendingTyp, Timestamp: now}
			select {
			case w.events <- event:
				pending = false
			case <-ctx.Done():
				return
			case <-w.stopCh:
				return
			}
		}
	}
}

// checkForChanges compares the file against the last snapshot
func (w *PollingWatcher) checkForChanges(path string) (ports.ChangeType, bool, error) {
	w.mu.Lock()
	old := w.snapshot
	w.mu.Unlock()

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if old == nil {
			return 0, false, nil
		}
		w.setSnapshot(nil)
		return ports.Deleted, true, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("stat file: %w", err)
	}

	// Size and mtime unchanged means the checksum can be skipped
	if old != nil && old.Size == info.Size() && old.ModTime.Equal(info.ModTime()) {
		return 0, false, nil
	}

	checksum, err := calculateChecksum(path)
	if err != nil {
		return 0, false, fmt.Errorf("calculate checksum: %w", err)
	}

	current := &fileState{Size: info.Size(), ModTime: info.ModTime(), Checksum: checksum}
	w.setSnapshot(current)

	if old == nil {
		return ports.Created, true, nil
	}
	return ports.Modified, old.Checksum != checksum, nil
}

func (w *PollingWatcher) setSnapshot(s *fileState) {
	w.mu.Lock()
	w.snapshot = s
	w.mu.Unlock()
}

// scan returns the current file state, or nil when the file does not exist
func scan(path string) (*fileState, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	checksum, err := calculateChecksum(path)
	if err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return &fileState{Size: info.Size(), ModTime: info.ModTime(), Checksum: checksum}, nil
}

// calculateChecksum calculates SHA256 checksum of a file
func calculateChecksum(path string) (string, error) {
	file, err := os.Open(path) // #nosec G304 - path is validated by caller
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// Ensure PollingWatcher implements ports.FileWatcher
var _ ports.FileWatcher = (*PollingWatcher)(nil)
