package entities

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	require.NoError(t, (&Config{}).Validate())

	tests := []struct {
		name   string
		config Config
		want   string
	}{
		{"port out of range", Config{Server: ServerConfig{Port: 70000}}, "server config"},
		{"bad host", Config{Server: ServerConfig{Host: "bad host"}}, "invalid host"},
		{"negative timeout", Config{Server: ServerConfig{ReadTimeout: -1}}, "timeouts"},
		{"base not above floor", Config{Presentation: PresentationConfig{BaseFontSize: 12, MinFontSize: 12}}, "presentation config"},
		{"negative debounce", Config{Presentation: PresentationConfig{ResizeDebounceMs: -1}}, "resize debounce"},
		{"exclude level too deep", Config{Presentation: PresentationConfig{BoundaryExcludeLevel: 7}}, "exclude level"},
		{"remote url scheme", Config{Source: SourceConfig{RemoteURL: "http://localhost:9222"}}, "ws://"},
		{"blank allowed host", Config{Source: SourceConfig{AllowedHosts: []string{" "}}}, "allowed host"},
		{"watcher interval too short", Config{Watcher: WatcherConfig{IntervalMs: 10}}, "at least 50ms"},
		{"negative watcher debounce", Config{Watcher: WatcherConfig{DebounceMs: -1}}, "watcher config"},
		{"log level", Config{Logging: LoggingConfig{Level: "verbose"}}, "invalid log level"},
		{"relative log file", Config{Logging: LoggingConfig{File: "presenotion.log"}}, "absolute"},
		{"log dir missing", Config{Logging: LoggingConfig{File: filepath.Join(t.TempDir(), "missing", "x.log")}}, "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestServerConfig_CORSOrigins(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		wantErr string
	}{
		{name: "valid origins", origins: []string{"http://localhost:3000", "https://example.com"}},
		{name: "wildcard", origins: []string{"*"}},
		{name: "no protocol", origins: []string{"example.com"}, wantErr: "invalid CORS origin format"},
		{name: "empty", origins: []string{""}, wantErr: "CORS origin cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ServerConfig{Host: "localhost", Port: 8080, CORSOrigins: tt.origins}.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, ServerConfig{}.GetCORSOrigins())
}

func TestPresentationConfigDefaults(t *testing.T) {
	var p PresentationConfig

	assert.Equal(t, 24, p.GetBaseFontSize())
	assert.Equal(t, 12, p.GetMinFontSize())
	assert.Equal(t, 300*time.Millisecond, p.GetResizeDebounce())
	assert.Equal(t, 2*time.Second, p.GetDigitTimeout())
	assert.Equal(t, 1, p.GetBoundaryExcludeLevel())
	assert.Equal(t, "Untitled", p.GetDefaultTitle())
	assert.Equal(t, "No Content", p.GetEmptyTitle())
	assert.Equal(t, "No content found on this page.", p.GetEmptyMessage())

	p = PresentationConfig{BaseFontSize: 32, DigitTimeoutMs: 500, DefaultTitle: "Intro"}
	assert.Equal(t, 32, p.GetBaseFontSize())
	assert.Equal(t, 500*time.Millisecond, p.GetDigitTimeout())
	assert.Equal(t, "Intro", p.GetDefaultTitle())
}

func TestServerConfigTimeouts(t *testing.T) {
	var s ServerConfig
	assert.Equal(t, 15*time.Second, s.GetReadTimeout())
	assert.Equal(t, 15*time.Second, s.GetWriteTimeout())
	assert.Equal(t, 5*time.Second, s.GetShutdownTimeout())
	assert.True(t, s.IsDevelopment())

	s = ServerConfig{ReadTimeout: 3, Environment: "production"}
	assert.Equal(t, 3*time.Second, s.GetReadTimeout())
	assert.False(t, s.IsDevelopment())
}

func TestSourceConfigIsAllowedHost(t *testing.T) {
	var s SourceConfig

	tests := []struct {
		host string
		want bool
	}{
		{"www.notion.so", true},
		{"notion.so", true},
		{"WWW.NOTION.SO.", true},
		{"acme.notion.site", true},
		{"notion.site", false},
		{"evilnotion.so", false},
		{"example.com", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.IsAllowedHost(tt.host), tt.host)
	}

	custom := SourceConfig{AllowedHosts: []string{"wiki.example.com"}}
	assert.True(t, custom.IsAllowedHost("wiki.example.com"))
	assert.False(t, custom.IsAllowedHost("www.notion.so"))
	assert.Equal(t, 30*time.Second, s.GetLoadTimeout())
}

func TestLoggingConfigLevel(t *testing.T) {
	assert.Equal(t, LogLevelInfo, LoggingConfig{}.GetLevel())
	assert.Equal(t, LogLevelDebug, LoggingConfig{Level: "debug"}.GetLevel())
}

func TestWatcherConfigDurations(t *testing.T) {
	var w WatcherConfig
	assert.Equal(t, 200*time.Millisecond, w.GetInterval())
	assert.Equal(t, 500*time.Millisecond, w.GetDebounce())

	w = WatcherConfig{IntervalMs: 100, DebounceMs: 250}
	assert.Equal(t, 100*time.Millisecond, w.GetInterval())
	assert.Equal(t, 250*time.Millisecond, w.GetDebounce())
}
