// Package http hosts a presentation session over HTTP and WebSocket.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/zorro901/presenotion/internal/adapters/secondary/monitoring"
	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

// Server exposes a PresentationSession to the browser host page
type Server struct {
	server      *http.Server
	listener    net.Listener
	connMgr     *ConnectionManager
	monitor     *monitoring.PerformanceMonitor
	session     ports.PresentationSession
	renderer    ports.Renderer
	config      *entities.ServerConfig
	logger      *slog.Logger
	unsubscribe func()
	mu          sync.RWMutex
	running     bool
}

// NewServer creates a new HTTP server.
// config must not be nil; use the loader defaults if needed.
func NewServer(session ports.PresentationSession, renderer ports.Renderer, config *entities.ServerConfig, logger *slog.Logger) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")
	return &Server{
		session:  session,
		renderer: renderer,
		connMgr:  NewConnectionManager(logger),
		monitor:  monitoring.NewPerformanceMonitor(),
		config:   config,
		logger:   logger,
	}
}

// Start binds the listener and serves in the background. Session events are
// forwarded to every WebSocket client until Stop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	go s.connMgr.Run(ctx)
	s.unsubscribe = s.session.Subscribe(s.connMgr.Broadcast)

	s.listener = ln
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	s.running = true

	go func() {
		s.logger.Info("HTTP server starting", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.New("server not running")
	}

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.connMgr.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.running = false
	return nil
}

// URL returns the address the presentation page is served from
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return fmt.Sprintf("http://%s:%d/", s.config.Host, s.config.Port)
	}
	return "http://" + s.listener.Addr().String() + "/"
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler returns the routed handler with middleware and CORS applied
func (s *Server) Handler() http.Handler {
	router := s.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler(router)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ws", s.handleWebSocket)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/deck", s.handleDeck).Methods(http.MethodGet)
	api.HandleFunc("/slides/{position:[0-9]+}", s.handleSlide).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/start", s.handleStart).Methods(http.MethodPost)
	api.HandleFunc("/navigate", s.handleNavigate).Methods(http.MethodPost)
	api.HandleFunc("/keys", s.handleKey).Methods(http.MethodPost)
	api.HandleFunc("/measure", s.handleMeasure).Methods(http.MethodPost)
	api.HandleFunc("/resize", s.handleResize).Methods(http.MethodPost)
	api.HandleFunc("/close", s.handleClose).Methods(http.MethodPost)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	router.HandleFunc("/", s.handlePresentation).Methods(http.MethodGet)

	// Apply middleware in order: security -> metrics -> logging -> recovery
	var handler http.Handler = router
	handler = securityHeadersMiddleware(handler)
	handler = createMetricsMiddleware(handler, s.monitor)
	handler = createLoggingMiddleware(handler, s.logger)
	handler = createRecoveryMiddleware(handler, s.logger)

	return handler
}
