package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestTOMLLoader_LoadGlobal(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		loader := NewTOMLLoaderWithPath(filepath.Join(t.TempDir(), "config.toml"))

		config, err := loader.LoadGlobal(context.Background())

		require.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("loads existing config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		writeFile(t, path, `
[server]
host = "0.0.0.0"
port = 8080

[presentation]
base_font_size = 28
digit_timeout_ms = 1500

[source]
remote_url = "ws://127.0.0.1:9222/devtools/browser/abc"
headful = true

[browser]
no_open = true
browser = "firefox"
`)
		loader := NewTOMLLoaderWithPath(path)

		config, err := loader.LoadGlobal(context.Background())

		require.NoError(t, err)
		require.NotNil(t, config)
		assert.Equal(t, "0.0.0.0", config.Server.Host)
		assert.Equal(t, 8080, config.Server.Port)
		assert.Equal(t, 28, config.Presentation.BaseFontSize)
		assert.Equal(t, 1500, config.Presentation.DigitTimeoutMs)
		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", config.Source.RemoteURL)
		assert.True(t, config.Source.Headful)
		assert.True(t, config.Browser.NoOpen)
		assert.Equal(t, "firefox", config.Browser.Browser)
	})

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed toml", content: "[server\nport = 1", wantErr: "parsing TOML"},
		{name: "unknown key", content: "[server]\nprot = 8080\n", wantErr: "unknown keys"},
		{name: "invalid value", content: "[server]\nport = 70000\n", wantErr: "invalid config"},
		{name: "invalid font sizes", content: "[presentation]\nbase_font_size = 10\nmin_font_size = 12\n", wantErr: "invalid config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeFile(t, path, tt.content)

			_, err := NewTOMLLoaderWithPath(path).LoadGlobal(context.Background())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTOMLLoader_LoadLocal(t *testing.T) {
	dir := t.TempDir()
	loader := NewTOMLLoaderWithPath(filepath.Join(dir, "global.toml"))

	config, err := loader.LoadLocal(context.Background(), dir)
	require.NoError(t, err)
	assert.Nil(t, config)

	writeFile(t, filepath.Join(dir, LocalConfigName), "[presentation]\ndefault_title = \"Intro\"\n")

	config, err = loader.LoadLocal(context.Background(), dir)
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, "Intro", config.Presentation.DefaultTitle)
	assert.Equal(t, filepath.Join(dir, LocalConfigName), loader.GetLocalPath(dir))
}

func TestTOMLLoader_CreateDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "presenotion", "config.toml")
	loader := NewTOMLLoaderWithPath(path)
	ctx := context.Background()

	require.NoError(t, loader.CreateDefaults(ctx, path))

	config, err := loader.LoadGlobal(ctx)
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, GetDefaultConfig(), config)

	err = loader.CreateDefaults(ctx, path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrExist))
}

func TestNewTOMLLoader(t *testing.T) {
	loader := NewTOMLLoader()
	assert.Equal(t, filepath.Join("presenotion", "config.toml"),
		filepath.Join(filepath.Base(filepath.Dir(loader.GetGlobalPath())), filepath.Base(loader.GetGlobalPath())))
}
