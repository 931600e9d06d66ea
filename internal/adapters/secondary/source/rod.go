package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"golang.org/x/net/html"

	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

// contentSelector is present once Notion has rendered the page body
const contentSelector = ".notion-page-content"

// ErrSourceClosed is returned by Fetch after Close
var ErrSourceClosed = errors.New("source: browser source is closed")

// BrowserSource loads JS-rendered pages through Chrome. The browser is
// started on first use and reused until Close.
type BrowserSource struct {
	cfg    entities.SourceConfig
	logger *slog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewBrowserSource creates a browser-backed document source
func NewBrowserSource(cfg entities.SourceConfig, logger *slog.Logger) *BrowserSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserSource{
		cfg:    cfg,
		logger: logger.With("component", "browser_source"),
	}
}

// Supports reports whether identifier is an absolute http(s) URL
func (s *BrowserSource) Supports(identifier string) bool {
	u, err := url.Parse(strings.TrimSpace(identifier))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch navigates to the page, waits for the Notion content root and parses
// the rendered DOM
func (s *BrowserSource) Fetch(ctx context.Context, identifier string) (*ports.Document, error) {
	b, err := s.connect()
	if err != nil {
		return nil, err
	}

	page, err := s.openPage(b)
	if err != nil {
		return nil, fmt.Errorf("source: create tab: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.logger.Debug("closing tab failed", "error", err)
		}
	}()

	loadCtx, cancel := context.WithTimeout(ctx, s.cfg.GetLoadTimeout())
	defer cancel()
	p := page.Context(loadCtx)

	if err := p.Navigate(identifier); err != nil {
		return nil, fmt.Errorf("source: navigate %s: %w", identifier, err)
	}
	if err := p.WaitLoad(); err != nil {
		s.logger.Warn("wait load timeout", "url", identifier, "error", err)
	}
	if _, err := p.Element(contentSelector); err != nil {
		s.logger.Warn("notion content not found", "url", identifier, "error", err)
	}

	res, err := page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, fmt.Errorf("source: get DOM: %w", err)
	}

	root, err := html.Parse(strings.NewReader(res.Value.Str()))
	if err != nil {
		return nil, fmt.Errorf("source: parse DOM: %w", err)
	}

	var title string
	if info, err := page.Info(); err == nil {
		title = info.Title
	}

	s.logger.Debug("fetched page", "url", identifier, "title", title)
	return &ports.Document{Identifier: identifier, Title: title, Root: root}, nil
}

// Close shuts the browser down
func (s *BrowserSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return err
}

func (s *BrowserSource) openPage(b *rod.Browser) (*rod.Page, error) {
	if s.cfg.DisableStealth {
		return b.Page(proto.TargetCreateTarget{URL: ""})
	}
	return stealth.Page(b)
}

// connect returns the running browser, starting Chrome or attaching to the
// configured remote instance on first use
func (s *BrowserSource) connect() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSourceClosed
	}
	if s.browser != nil {
		return s.browser, nil
	}

	wsURL := s.cfg.RemoteURL
	if wsURL != "" {
		s.logger.Info("connecting to remote browser", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(!s.cfg.Headful).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("source: launch browser: %w", err)
		}
		wsURL = u
		s.lnch = l
		s.logger.Info("launched local browser", "headful", s.cfg.Headful)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if s.lnch != nil {
			s.lnch.Cleanup()
			s.lnch = nil
		}
		return nil, fmt.Errorf("source: connect browser: %w", err)
	}
	s.browser = b
	return b, nil
}
