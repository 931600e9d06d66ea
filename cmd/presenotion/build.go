package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

var (
	buildFormat string
	buildOutput string
)

var buildCmd = &cobra.Command{
	Use:   "build <url|file>",
	Short: "Assemble a slide deck and print it",
	Long: `Load a Notion page (or a saved .html page or markdown export), split it
into slides and print the resulting deck.

Example:
  presenotion build https://www.notion.so/team/Roadmap-0123456789abcdef
  presenotion build export.md --format yaml -o deck.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildFormat, "format", "f", "json", "Output format: json or yaml")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Write the deck to a file instead of stdout")
	buildCmd.Flags().Bool("headful", false, "Show the browser window while loading the page")
	buildCmd.Flags().String("remote-browser", "", "DevTools websocket URL of an already running browser")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildFormat != "json" && buildFormat != "yaml" {
		return fmt.Errorf("unsupported format %q (must be json or yaml)", buildFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, cleanup, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()

	p := newPipeline(cfg, logger)
	defer func() { _ = p.Close() }()

	deck, err := p.session.Start(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("building deck: %w", err)
	}

	for _, pe := range deck.ParseErrors {
		logger.Warn("skipped content", "block", pe.BlockID, "kind", pe.BlockKind, "reason", pe.Message)
	}

	out := cmd.OutOrStdout()
	if buildOutput != "" {
		f, err := os.Create(buildOutput) // #nosec G304 - path chosen by the user
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if err := writeDeck(out, deck, buildFormat); err != nil {
		return fmt.Errorf("writing deck: %w", err)
	}

	logger.Info("deck built", "slides", deck.SlideCount(), "blocks", deck.BlockCount)
	return nil
}

// writeDeck encodes deck as json or yaml
func writeDeck(w io.Writer, deck *entities.SlideDeck, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(deck); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(deck)
}
