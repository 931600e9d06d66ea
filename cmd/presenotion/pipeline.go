package main

import (
	"log/slog"

	"github.com/zorro901/presenotion/internal/adapters/secondary/extractor"
	"github.com/zorro901/presenotion/internal/adapters/secondary/source"
	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
	"github.com/zorro901/presenotion/internal/domain/services"
)

// pipeline is the session plus the resources it holds open
type pipeline struct {
	session *services.PresentationSession
	files   *source.FileSource
	browser *source.BrowserSource
}

// newPipeline wires sources, extractor and session for cfg. Local files are
// tried before the browser so saved pages never start Chrome.
func newPipeline(cfg *entities.Config, logger *slog.Logger) *pipeline {
	files := source.NewFileSource(logger)
	browser := source.NewBrowserSource(cfg.Source, logger)
	router := source.NewRouter(files, browser)

	session := services.NewPresentationSession(
		router,
		extractor.NewNotionExtractor(logger),
		*cfg,
		ports.NewRealTimeProvider(),
		logger,
	)

	return &pipeline{session: session, files: files, browser: browser}
}

// isLocal reports whether identifier is served from a local file
func (p *pipeline) isLocal(identifier string) bool {
	return p.files.Supports(identifier)
}

// Close ends the session and shuts the browser down
func (p *pipeline) Close() error {
	_ = p.session.Close()
	return p.browser.Close()
}
