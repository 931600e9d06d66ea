package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/services"
)

// maxBodySize caps JSON request bodies
const maxBodySize = 1 << 20

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StartRequest opens a presentation for a source identifier
type StartRequest struct {
	Identifier string `json:"identifier"`
}

// NavigateRequest applies a navigation action; Index is used by jump only
type NavigateRequest struct {
	Action entities.NavigationAction `json:"action"`
	Index  int                       `json:"index"`
}

// MeasureRequest carries a layout measurement taken at the base font size
type MeasureRequest struct {
	ContentHeight  float64 `json:"contentHeight"`
	ViewportHeight float64 `json:"viewportHeight"`
}

// MeasureResponse reports the font size applied to the current slide
type MeasureResponse struct {
	Position int `json:"position"`
	FontSize int `json:"fontSize"`
}

// errBadRequest marks malformed request bodies
var errBadRequest = errors.New("bad request")

// handlePresentation serves the presentation page for the active deck
func (s *Server) handlePresentation(w http.ResponseWriter, r *http.Request) {
	deck := s.session.Deck()
	if deck == nil {
		s.handleError(w, services.ErrNoSession)
		return
	}

	start := time.Now()
	html, err := s.renderer.RenderPresentation(r.Context(), deck)
	s.monitor.RecordRender(time.Since(start))
	if err != nil {
		s.handleError(w, fmt.Errorf("rendering presentation: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// handleDeck returns the active deck as JSON
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	deck := s.session.Deck()
	if deck == nil {
		s.handleError(w, services.ErrNoSession)
		return
	}
	s.writeJSON(w, http.StatusOK, deck)
}

// handleSlide renders one slide as an HTML fragment
func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(mux.Vars(r)["position"])
	if err != nil {
		s.handleError(w, fmt.Errorf("%w: invalid slide position", errBadRequest))
		return
	}

	slide, err := s.session.Slide(position)
	if err != nil {
		s.handleError(w, err)
		return
	}

	start := time.Now()
	html, err := s.renderer.RenderSlide(r.Context(), &slide, s.session.State().SlideCount)
	s.monitor.RecordRender(time.Since(start))
	if err != nil {
		s.handleError(w, fmt.Errorf("rendering slide: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

// handleStats returns server activity counters
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.monitor.Snapshot())
}

// handleState returns the navigation snapshot
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session.State())
}

// handleStart opens a new presentation, replacing the active one
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	if strings.TrimSpace(req.Identifier) == "" {
		s.handleError(w, fmt.Errorf("%w: identifier is required", errBadRequest))
		return
	}

	deck, err := s.session.Start(r.Context(), req.Identifier)
	s.monitor.RecordDeckStart(err)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, deck)
}

// handleNavigate applies an explicit navigation action
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	state, err := s.session.Navigate(req.Action, req.Index)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// handleKey forwards a key press from the host page
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var event entities.KeyEvent
	if err := decodeJSON(w, r, &event); err != nil {
		s.handleError(w, err)
		return
	}

	result, err := s.session.HandleKey(event)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleMeasure fits the current slide immediately
func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	var req MeasureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	size, err := s.session.Measure(req.ContentHeight, req.ViewportHeight)
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, MeasureResponse{
		Position: s.session.State().CurrentIndex,
		FontSize: size,
	})
}

// handleResize schedules a debounced refit
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req MeasureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	if err := s.session.Resize(req.ContentHeight, req.ViewportHeight); err != nil {
		s.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleClose ends the presentation
func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Close(); err != nil {
		s.handleError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.session.State())
}

// decodeJSON reads a size-limited JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// errorStatus maps domain errors to an HTTP status and error code
func errorStatus(err error) (int, ErrorResponse) {
	var hostErr *entities.HostError
	switch {
	case errors.As(err, &hostErr):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: string(hostErr.Kind), Message: hostErr.Message}
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()}
	case errors.Is(err, services.ErrNoSession), errors.Is(err, services.ErrSessionClosed):
		return http.StatusConflict, ErrorResponse{Error: "no_session", Message: err.Error()}
	case errors.Is(err, entities.ErrSlideNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal", Message: err.Error()}
	}
}

// handleError writes an error response
func (s *Server) handleError(w http.ResponseWriter, err error) {
	status, resp := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, resp)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}
