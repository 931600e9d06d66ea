package entities

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Presentation PresentationConfig `toml:"presentation"`
	Source       SourceConfig       `toml:"source"`
	Browser      BrowserConfig      `toml:"browser"`
	Watcher      WatcherConfig      `toml:"watcher"`
	Logging      LoggingConfig      `toml:"logging"`
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Presentation.Validate(); err != nil {
		return fmt.Errorf("presentation config: %w", err)
	}

	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source config: %w", err)
	}

	if err := c.Watcher.Validate(); err != nil {
		return fmt.Errorf("watcher config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	ReadTimeout     int      `toml:"read_timeout"`
	WriteTimeout    int      `toml:"write_timeout"`
	ShutdownTimeout int      `toml:"shutdown_timeout"`
	Environment     string   `toml:"environment"`
	CORSOrigins     []string `toml:"cors_origins"`
}

// Validate validates server configuration
func (s ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return errors.New("port must be between 0 and 65535")
	}

	if s.Host != "" && s.Host != "localhost" && net.ParseIP(s.Host) == nil {
		if strings.ContainsAny(s.Host, " /!") {
			return fmt.Errorf("invalid host: %s", s.Host)
		}
	}

	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return errors.New("timeouts must be non-negative")
	}

	for _, origin := range s.CORSOrigins {
		if origin == "" {
			return errors.New("CORS origin cannot be empty")
		}
		if origin == "*" {
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("invalid CORS origin format: %s (must start with http:// or https://)", origin)
		}
	}

	return nil
}

// GetReadTimeout returns the read timeout as a duration
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Second
}

// GetWriteTimeout returns the write timeout as a duration
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Second
}

// GetShutdownTimeout returns the shutdown timeout as a duration
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// GetCORSOrigins returns CORS origins with localhost defaults if empty
func (s ServerConfig) GetCORSOrigins() []string {
	if len(s.CORSOrigins) == 0 {
		return []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}
	}
	return s.CORSOrigins
}

// IsDevelopment returns true if the server is running in development mode
func (s ServerConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == ""
}

// PresentationConfig holds the tuning constants of the slide pipeline
type PresentationConfig struct {
	BaseFontSize         int    `toml:"base_font_size"`
	MinFontSize          int    `toml:"min_font_size"`
	ResizeDebounceMs     int    `toml:"resize_debounce_ms"`
	DigitTimeoutMs       int    `toml:"digit_timeout_ms"`
	BoundaryExcludeLevel int    `toml:"boundary_exclude_level"`
	DefaultTitle         string `toml:"default_title"`
	EmptyTitle           string `toml:"empty_title"`
	EmptyMessage         string `toml:"empty_message"`
}

// Presentation defaults
const (
	DefaultBaseFontSize         = 24
	DefaultMinFontSize          = 12
	DefaultResizeDebounce       = 300 * time.Millisecond
	DefaultDigitTimeout         = 2 * time.Second
	DefaultBoundaryExcludeLevel = 1
	DefaultSlideTitle           = "Untitled"
	DefaultEmptyTitle           = "No Content"
	DefaultEmptyMessage         = "No content found on this page."
)

// Validate validates presentation configuration
func (p PresentationConfig) Validate() error {
	if p.BaseFontSize < 0 || p.MinFontSize < 0 {
		return errors.New("font sizes must be non-negative")
	}

	if p.GetBaseFontSize() <= p.GetMinFontSize() {
		return fmt.Errorf("base font size %d must be greater than min font size %d", p.GetBaseFontSize(), p.GetMinFontSize())
	}

	if p.ResizeDebounceMs < 0 {
		return errors.New("resize debounce must be non-negative")
	}

	if p.DigitTimeoutMs < 0 {
		return errors.New("digit timeout must be non-negative")
	}

	if p.BoundaryExcludeLevel < 0 || p.BoundaryExcludeLevel > 6 {
		return errors.New("boundary exclude level must be between 0 and 6")
	}

	return nil
}

// GetBaseFontSize returns the base font size with default
func (p PresentationConfig) GetBaseFontSize() int {
	if p.BaseFontSize <= 0 {
		return DefaultBaseFontSize
	}
	return p.BaseFontSize
}

// GetMinFontSize returns the minimum font size with default
func (p PresentationConfig) GetMinFontSize() int {
	if p.MinFontSize <= 0 {
		return DefaultMinFontSize
	}
	return p.MinFontSize
}

// GetResizeDebounce returns the resize debounce as a duration
func (p PresentationConfig) GetResizeDebounce() time.Duration {
	if p.ResizeDebounceMs <= 0 {
		return DefaultResizeDebounce
	}
	return time.Duration(p.ResizeDebounceMs) * time.Millisecond
}

// GetDigitTimeout returns the digit buffer idle timeout as a duration
func (p PresentationConfig) GetDigitTimeout() time.Duration {
	if p.DigitTimeoutMs <= 0 {
		return DefaultDigitTimeout
	}
	return time.Duration(p.DigitTimeoutMs) * time.Millisecond
}

// GetBoundaryExcludeLevel returns the document-title level never used as a boundary
func (p PresentationConfig) GetBoundaryExcludeLevel() int {
	if p.BoundaryExcludeLevel <= 0 {
		return DefaultBoundaryExcludeLevel
	}
	return p.BoundaryExcludeLevel
}

// GetDefaultTitle returns the placeholder title for slides without a boundary heading
func (p PresentationConfig) GetDefaultTitle() string {
	if p.DefaultTitle == "" {
		return DefaultSlideTitle
	}
	return p.DefaultTitle
}

// GetEmptyTitle returns the title of the fallback slide
func (p PresentationConfig) GetEmptyTitle() string {
	if p.EmptyTitle == "" {
		return DefaultEmptyTitle
	}
	return p.EmptyTitle
}

// GetEmptyMessage returns the informational text of the fallback slide
func (p PresentationConfig) GetEmptyMessage() string {
	if p.EmptyMessage == "" {
		return DefaultEmptyMessage
	}
	return p.EmptyMessage
}

// SourceConfig controls where documents are loaded from
type SourceConfig struct {
	AllowedHosts  []string `toml:"allowed_hosts"`
	RemoteURL     string   `toml:"remote_url"`
	LoadTimeoutMs int      `toml:"load_timeout_ms"`

	// Headful shows the browser window instead of running headless
	Headful bool `toml:"headful"`

	// DisableStealth opens plain pages without the anti-detection patches
	DisableStealth bool `toml:"disable_stealth"`
}

// Validate validates source configuration
func (s SourceConfig) Validate() error {
	if s.LoadTimeoutMs < 0 {
		return errors.New("load timeout must be non-negative")
	}

	for _, h := range s.AllowedHosts {
		if strings.TrimSpace(h) == "" {
			return errors.New("allowed host cannot be empty")
		}
	}

	if s.RemoteURL != "" && !strings.HasPrefix(s.RemoteURL, "ws://") && !strings.HasPrefix(s.RemoteURL, "wss://") {
		return fmt.Errorf("remote browser URL must start with ws:// or wss://: %s", s.RemoteURL)
	}

	return nil
}

// GetAllowedHosts returns the hosts considered Notion pages
func (s SourceConfig) GetAllowedHosts() []string {
	if len(s.AllowedHosts) == 0 {
		return []string{"notion.so", "www.notion.so", "*.notion.site"}
	}
	return s.AllowedHosts
}

// GetLoadTimeout returns the page load timeout as a duration
func (s SourceConfig) GetLoadTimeout() time.Duration {
	if s.LoadTimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.LoadTimeoutMs) * time.Millisecond
}

// IsAllowedHost reports whether host matches one of the allowed host patterns.
// A leading "*." matches any subdomain.
func (s SourceConfig) IsAllowedHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, pattern := range s.GetAllowedHosts() {
		pattern = strings.ToLower(pattern)
		if strings.HasPrefix(pattern, "*.") {
			if strings.HasSuffix(host, pattern[1:]) {
				return true
			}
			continue
		}
		if host == pattern {
			return true
		}
	}
	return false
}

// BrowserConfig contains browser launch configuration
type BrowserConfig struct {
	// NoOpen skips opening the presentation page after serve starts
	NoOpen bool `toml:"no_open"`

	// Browser names a browser to prefer; empty or "default" uses the system default
	Browser string `toml:"browser"`
}

// WatcherConfig controls reloading of locally served documents
type WatcherConfig struct {
	// Enabled reloads the deck when a served local file changes
	Enabled    bool `toml:"enabled"`
	IntervalMs int  `toml:"interval_ms"`
	DebounceMs int  `toml:"debounce_ms"`
}

// Validate validates watcher configuration
func (w WatcherConfig) Validate() error {
	if w.IntervalMs != 0 && w.IntervalMs < 50 {
		return errors.New("watcher interval must be at least 50ms")
	}

	if w.DebounceMs < 0 {
		return errors.New("debounce time must be non-negative")
	}

	return nil
}

// GetInterval returns the polling interval as a duration
func (w WatcherConfig) GetInterval() time.Duration {
	if w.IntervalMs <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// GetDebounce returns the quiet period before a change is reported
func (w WatcherConfig) GetDebounce() time.Duration {
	if w.DebounceMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// LogLevel represents logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	JSONFormat bool   `toml:"json_format"` // Output logs in JSON format
	File       string `toml:"file"`        // Log to file (optional)
}

// Validate validates logging configuration
func (l LoggingConfig) Validate() error {
	switch LogLevel(l.Level) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, "":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", l.Level)
	}

	if l.File != "" {
		if !filepath.IsAbs(l.File) {
			return errors.New("log file path must be absolute")
		}

		dir := filepath.Dir(l.File)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("log file directory does not exist: %s", dir)
		}
	}

	return nil
}

// GetLevel returns the log level with default
func (l LoggingConfig) GetLevel() LogLevel {
	if l.Level == "" {
		return LogLevelInfo
	}
	return LogLevel(l.Level)
}
