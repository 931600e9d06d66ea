package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zorro901/presenotion/internal/adapters/secondary/config"
	"github.com/zorro901/presenotion/internal/domain/entities"
)

const deckMarkdown = `---
title: Roadmap
---
## Goals

Ship the **first** version.

## Risks

- scope
- time
`

// isolate points config lookups at an empty directory
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	workDir = dir
	t.Cleanup(func() { workDir = "" })
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		buildFormat = "json"
		buildOutput = ""
	})
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestBuildCommand(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "roadmap.md")
	require.NoError(t, os.WriteFile(path, []byte(deckMarkdown), 0o600))

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "build", path)
		require.NoError(t, err)

		var deck entities.SlideDeck
		require.NoError(t, json.Unmarshal([]byte(out), &deck))
		require.Len(t, deck.Slides, 2)
		assert.Equal(t, "Goals", deck.Slides[0].Title)
		assert.Equal(t, "Risks", deck.Slides[1].Title)
		assert.Equal(t, entities.DefaultBaseFontSize, deck.Slides[0].FontSize)
	})

	t.Run("yaml to file", func(t *testing.T) {
		target := filepath.Join(dir, "deck.yaml")
		_, _, err := execute(t, "build", path, "--format", "yaml", "-o", target)
		require.NoError(t, err)

		data, err := os.ReadFile(target)
		require.NoError(t, err)

		var deck entities.SlideDeck
		require.NoError(t, yaml.Unmarshal(data, &deck))
		assert.Len(t, deck.Slides, 2)
		assert.Contains(t, string(data), "source_identifier:")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute(t, "build", path, "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported format")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := execute(t, "build")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "accepts 1 arg(s)")
	})

	t.Run("wrong domain", func(t *testing.T) {
		_, _, err := execute(t, "build", "https://example.com/page")
		require.Error(t, err)
		assert.True(t, entities.IsHostError(err, entities.HostErrorWrongDomain))
	})
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presenotion", "config.toml")
	loader := config.NewTOMLLoaderWithPath(path)

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	require.NoError(t, runConfigInit(cmd, loader))
	assert.Contains(t, out.String(), path)

	cfg, err := loader.LoadGlobal(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)

	err = runConfigInit(cmd, loader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCollectFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().IntP("port", "p", 0, "")
	cmd.Flags().String("host", "", "")
	cmd.Flags().Bool("no-browser", false, "")
	cmd.Flags().Int("base-font-size", 0, "")

	require.NoError(t, cmd.Flags().Parse([]string{"-p", "8080", "--no-browser"}))

	assert.Equal(t, map[string]interface{}{
		"port":       8080,
		"no-browser": true,
	}, collectFlags(cmd))
}

func TestValidateServeConfig(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"valid", 3000, false},
		{"zero", 0, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateServeConfig(&entities.Config{Server: entities.ServerConfig{Host: "localhost", Port: tt.port}})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid port number")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("text honours level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, cleanup, err := newLogger(entities.LoggingConfig{Level: "warn"}, &buf)
		require.NoError(t, err)
		defer cleanup()

		logger.Info("hidden")
		logger.Warn("shown", "k", "v")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "k=v")
	})

	t.Run("json to file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "presenotion.log")
		var buf bytes.Buffer
		logger, cleanup, err := newLogger(entities.LoggingConfig{JSONFormat: true, File: file}, &buf)
		require.NoError(t, err)

		logger.Info("hello")
		cleanup()

		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Equal(t, buf.String(), string(data))

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &line))
		assert.Equal(t, "hello", line["msg"])
	})

	t.Run("unwritable file", func(t *testing.T) {
		_, _, err := newLogger(entities.LoggingConfig{File: filepath.Join(t.TempDir(), "missing", "x.log")}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, slogLevel(entities.LogLevelDebug))
	assert.Equal(t, slog.LevelInfo, slogLevel(entities.LogLevelInfo))
	assert.Equal(t, slog.LevelWarn, slogLevel(entities.LogLevelWarn))
	assert.Equal(t, slog.LevelError, slogLevel(entities.LogLevelError))
}

type fakeLauncher struct{ err error }

func (f fakeLauncher) Launch(string) error { return f.err }

func TestOpenBrowserWarnsOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	openBrowser(fakeLauncher{}, "http://localhost:3000/", logger)
	assert.Empty(t, buf.String())

	openBrowser(fakeLauncher{err: assert.AnError}, "http://localhost:3000/", logger)
	assert.Contains(t, buf.String(), "could not open browser")
}

func TestStartLiveReload(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Watcher.IntervalMs = 50
	p := newPipeline(cfg, slog.Default())
	defer func() { _ = p.Close() }()

	t.Run("remote page is not watched", func(t *testing.T) {
		reloader, err := startLiveReload(context.Background(), cfg, p, "https://www.notion.so/page", slog.Default())
		require.NoError(t, err)
		assert.Nil(t, reloader)
	})

	t.Run("local file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deck.md")
		require.NoError(t, os.WriteFile(path, []byte(deckMarkdown), 0o600))

		reloader, err := startLiveReload(context.Background(), cfg, p, "file://"+path, slog.Default())
		require.NoError(t, err)
		require.NotNil(t, reloader)
		assert.True(t, reloader.IsWatching())
		assert.NoError(t, reloader.Stop())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := startLiveReload(context.Background(), cfg, p, filepath.Join(t.TempDir(), "gone.md"), slog.Default())
		assert.Error(t, err)
	})
}
