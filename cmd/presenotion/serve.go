package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	httpadapter "github.com/zorro901/presenotion/internal/adapters/primary/http"
	"github.com/zorro901/presenotion/internal/adapters/secondary/browser"
	"github.com/zorro901/presenotion/internal/adapters/secondary/renderer"
	"github.com/zorro901/presenotion/internal/adapters/secondary/source"
	"github.com/zorro901/presenotion/internal/adapters/secondary/watcher"
	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
	"github.com/zorro901/presenotion/internal/domain/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve [url|file]",
	Short: "Present a Notion page from a local server",
	Long: `Start a local HTTP server hosting an interactive presentation. When a
page is given it is loaded immediately; otherwise a deck can be started
later with POST /api/start.

Navigation keys: arrows, space, page up/down, home/end, digits followed by
enter to jump, escape to close.

Example:
  presenotion serve https://www.notion.so/team/Roadmap-0123456789abcdef
  presenotion serve export.html --port 8080 --no-browser`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to serve on (overrides config)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().Bool("no-browser", false, "Don't open the presentation in a browser (overrides config)")
	serveCmd.Flags().String("browser", "", "Browser to open the presentation with (overrides config)")
	serveCmd.Flags().Bool("headful", false, "Show the browser window used to load pages")
	serveCmd.Flags().String("remote-browser", "", "DevTools websocket URL of an already running browser")
	serveCmd.Flags().Int("base-font-size", 0, "Starting font size of every slide in pixels")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload the deck when the served local file changes (overrides config)")
}

// validateServeConfig checks what serve needs beyond config validation
func validateServeConfig(cfg *entities.Config) error {
	if cfg.Server.Port <= 0 {
		return fmt.Errorf("invalid port number: %d", cfg.Server.Port)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := validateServeConfig(cfg); err != nil {
		return err
	}

	logger, cleanup, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()

	p := newPipeline(cfg, logger)
	defer func() { _ = p.Close() }()

	if len(args) == 1 {
		deck, err := p.session.Start(ctx, args[0])
		if err != nil {
			return fmt.Errorf("starting presentation: %w", err)
		}
		logger.Info("presentation ready", "title", deck.Title, "slides", deck.SlideCount())

		if cfg.Watcher.Enabled {
			reloader, err := startLiveReload(ctx, cfg, p, args[0], logger)
			if err != nil {
				return err
			}
			if reloader != nil {
				defer func() { _ = reloader.Stop() }()
			}
		}
	}

	rend, err := renderer.NewHTMLRenderer(cfg.Presentation.GetBaseFontSize())
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	server := httpadapter.NewServer(p.session, rend, &cfg.Server, logger)
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	url := server.URL()
	fmt.Fprintf(cmd.OutOrStdout(), "Presenting at %s\n", url)

	if !cfg.Browser.NoOpen {
		openBrowser(browser.NewLauncher(cfg.Browser.Browser, logger), url, logger)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stopping server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// startLiveReload follows edits to a local document; remote pages are not watched
func startLiveReload(ctx context.Context, cfg *entities.Config, p *pipeline, identifier string, logger *slog.Logger) (*services.LiveReloadService, error) {
	if !p.isLocal(identifier) {
		logger.Warn("watching only applies to local files", "source", identifier)
		return nil, nil
	}

	w := watcher.NewPollingWatcher(cfg.Watcher.GetInterval(), cfg.Watcher.GetDebounce(), logger)
	reloader := services.NewLiveReloadService(w, p.session, logger)
	if err := reloader.Start(ctx, source.FilePath(identifier)); err != nil {
		return nil, fmt.Errorf("watching %s: %w", identifier, err)
	}
	return reloader, nil
}

// openBrowser opens url and only warns on failure; the server keeps running
func openBrowser(l ports.BrowserLauncher, url string, logger *slog.Logger) {
	if err := l.Launch(url); err != nil {
		logger.Warn("could not open browser", "url", url, "error", err)
	}
}
