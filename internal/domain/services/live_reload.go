package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

// LiveReloadService rebuilds the deck of a locally served document whenever
// the file changes, keeping the presenter on the same slide where possible.
type LiveReloadService struct {
	watcher ports.FileWatcher
	session ports.PresentationSession
	logger  *slog.Logger

	mu          sync.Mutex
	watching    bool
	watchCancel context.CancelFunc
	path        string
	done        chan struct{}
}

// NewLiveReloadService creates a new live reload service
func NewLiveReloadService(watcher ports.FileWatcher, session ports.PresentationSession, logger *slog.Logger) *LiveReloadService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LiveReloadService{
		watcher: watcher,
		session: session,
		logger:  logger.With("service", "live_reload"),
	}
}

// Start watches path and reloads the session on every change
func (s *LiveReloadService) Start(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watching {
		return errors.New("already watching")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events, err := s.watcher.Watch(watchCtx, path)
	if err != nil {
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	s.watching = true
	s.watchCancel = cancel
	s.path = path
	s.done = make(chan struct{})

	go s.handleEvents(watchCtx, events, s.done)

	s.logger.Info("watching for changes", "path", path)
	return nil
}

// Stop stops watching and waits for an in-flight reload to finish
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	if !s.watching {
		s.mu.Unlock()
		return nil
	}
	s.watchCancel()
	s.watchCancel = nil
	s.watching = false
	done := s.done
	s.mu.Unlock()

	<-done
	return s.watcher.Stop()
}

// IsWatching returns whether the service is currently watching
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

func (s *LiveReloadService) handleEvents(ctx context.Context, events <-chan ports.FileChangeEvent, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}

			s.logger.Info("file change detected",
				slog.String("path", event.Path),
				slog.String("type", event.Type.String()),
			)

			if event.Type == ports.Deleted {
				s.logger.Warn("presented file removed, keeping current deck", slog.String("path", event.Path))
				continue
			}

			if err := s.reload(ctx); err != nil {
				s.logger.Error("failed to reload presentation",
					slog.String("error", err.Error()),
					slog.String("path", event.Path),
				)
			}
		}
	}
}

// reload restarts the session and returns to the previous slide, clamped to
// the new deck
func (s *LiveReloadService) reload(ctx context.Context) error {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	previous := s.session.State()

	deck, err := s.session.Start(ctx, path)
	if err != nil {
		return fmt.Errorf("reloading %s: %w", path, err)
	}

	if previous.IsOpen && previous.CurrentIndex > 0 {
		target := min(previous.CurrentIndex, deck.SlideCount()-1)
		if _, err := s.session.Navigate(entities.ActionJump, target); err != nil {
			return fmt.Errorf("restoring slide %d: %w", target+1, err)
		}
	}

	s.logger.Info("presentation reloaded",
		slog.String("path", path),
		slog.Int("slides", deck.SlideCount()),
	)
	return nil
}
