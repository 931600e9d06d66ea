package config

import (
	"github.com/zorro901/presenotion/internal/domain/entities"
	"github.com/zorro901/presenotion/internal/domain/ports"
)

// ConfigMerger implements the ConfigMerger interface
type ConfigMerger struct{}

// NewConfigMerger creates a new configuration merger
func NewConfigMerger() *ConfigMerger {
	return &ConfigMerger{}
}

// Merge merges multiple configurations with later configs taking precedence.
// Zero values never override. Booleans default to false, so a true in any
// layer wins.
func (m *ConfigMerger) Merge(configs ...*entities.Config) *entities.Config {
	if len(configs) == 0 {
		return GetDefaultConfig()
	}

	var result *entities.Config
	for _, c := range configs {
		if c == nil {
			continue
		}
		if result == nil {
			result = deepCopy(c)
			continue
		}
		m.mergeInto(result, c)
	}

	if result == nil {
		return GetDefaultConfig()
	}
	return result
}

// ApplyFlags applies CLI flag overrides to a configuration
func (m *ConfigMerger) ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config {
	result := deepCopy(config)

	if port, ok := flags["port"].(int); ok && port > 0 {
		result.Server.Port = port
	}

	if host, ok := flags["host"].(string); ok && host != "" {
		result.Server.Host = host
	}

	if noBrowser, ok := flags["no-browser"].(bool); ok && noBrowser {
		result.Browser.NoOpen = true
	}

	if browser, ok := flags["browser"].(string); ok && browser != "" {
		result.Browser.Browser = browser
	}

	if headful, ok := flags["headful"].(bool); ok && headful {
		result.Source.Headful = true
	}

	if remote, ok := flags["remote-browser"].(string); ok && remote != "" {
		result.Source.RemoteURL = remote
	}

	if size, ok := flags["base-font-size"].(int); ok && size > 0 {
		result.Presentation.BaseFontSize = size
	}

	if watch, ok := flags["watch"].(bool); ok && watch {
		result.Watcher.Enabled = true
	}

	if level, ok := flags["log-level"].(string); ok && level != "" {
		result.Logging.Level = level
	}

	return result
}

// ApplyEnvVars applies PRESENOTION_* environment overrides to a configuration
func (m *ConfigMerger) ApplyEnvVars(config *entities.Config) *entities.Config {
	result := deepCopy(config)

	// Server
	if host, ok := lookupEnv("HOST"); ok {
		result.Server.Host = host
	}
	if port, ok := envInt("PORT"); ok && port > 0 {
		result.Server.Port = port
	}
	if env, ok := lookupEnv("ENV"); ok {
		result.Server.Environment = env
	}
	if origins, ok := envSlice("CORS_ORIGINS"); ok {
		result.Server.CORSOrigins = origins
	}

	// Presentation
	if size, ok := envInt("BASE_FONT_SIZE"); ok && size > 0 {
		result.Presentation.BaseFontSize = size
	}
	if size, ok := envInt("MIN_FONT_SIZE"); ok && size > 0 {
		result.Presentation.MinFontSize = size
	}
	if ms, ok := envInt("DIGIT_TIMEOUT_MS"); ok && ms > 0 {
		result.Presentation.DigitTimeoutMs = ms
	}
	if ms, ok := envInt("RESIZE_DEBOUNCE_MS"); ok && ms > 0 {
		result.Presentation.ResizeDebounceMs = ms
	}

	// Source
	if remote, ok := lookupEnv("REMOTE_BROWSER"); ok {
		result.Source.RemoteURL = remote
	}
	if headful, ok := envBool("HEADFUL"); ok {
		result.Source.Headful = headful
	}
	if ms, ok := envInt("LOAD_TIMEOUT_MS"); ok && ms > 0 {
		result.Source.LoadTimeoutMs = ms
	}
	if hosts, ok := envSlice("ALLOWED_HOSTS"); ok {
		result.Source.AllowedHosts = hosts
	}

	// Browser
	if noBrowser, ok := envBool("NO_BROWSER"); ok {
		result.Browser.NoOpen = noBrowser
	}
	if browser, ok := lookupEnv("BROWSER"); ok {
		result.Browser.Browser = browser
	}

	// Watcher
	if watch, ok := envBool("WATCH"); ok {
		result.Watcher.Enabled = watch
	}
	if ms, ok := envInt("WATCH_INTERVAL_MS"); ok && ms > 0 {
		result.Watcher.IntervalMs = ms
	}

	// Logging
	if level, ok := lookupEnv("LOG_LEVEL"); ok {
		result.Logging.Level = level
	}
	if jsonFormat, ok := envBool("LOG_JSON"); ok {
		result.Logging.JSONFormat = jsonFormat
	}
	if file, ok := lookupEnv("LOG_FILE"); ok {
		result.Logging.File = file
	}

	return result
}

// mergeInto merges source configuration into target configuration
func (m *ConfigMerger) mergeInto(target, source *entities.Config) {
	// Server config
	mergeString(&target.Server.Host, source.Server.Host)
	mergeInt(&target.Server.Port, source.Server.Port)
	mergeInt(&target.Server.ReadTimeout, source.Server.ReadTimeout)
	mergeInt(&target.Server.WriteTimeout, source.Server.WriteTimeout)
	mergeInt(&target.Server.ShutdownTimeout, source.Server.ShutdownTimeout)
	mergeString(&target.Server.Environment, source.Server.Environment)
	mergeSlice(&target.Server.CORSOrigins, source.Server.CORSOrigins)

	// Presentation config
	p, sp := &target.Presentation, source.Presentation
	mergeInt(&p.BaseFontSize, sp.BaseFontSize)
	mergeInt(&p.MinFontSize, sp.MinFontSize)
	mergeInt(&p.ResizeDebounceMs, sp.ResizeDebounceMs)
	mergeInt(&p.DigitTimeoutMs, sp.DigitTimeoutMs)
	mergeInt(&p.BoundaryExcludeLevel, sp.BoundaryExcludeLevel)
	mergeString(&p.DefaultTitle, sp.DefaultTitle)
	mergeString(&p.EmptyTitle, sp.EmptyTitle)
	mergeString(&p.EmptyMessage, sp.EmptyMessage)

	// Source config
	mergeSlice(&target.Source.AllowedHosts, source.Source.AllowedHosts)
	mergeString(&target.Source.RemoteURL, source.Source.RemoteURL)
	mergeInt(&target.Source.LoadTimeoutMs, source.Source.LoadTimeoutMs)
	target.Source.Headful = target.Source.Headful || source.Source.Headful
	target.Source.DisableStealth = target.Source.DisableStealth || source.Source.DisableStealth

	// Browser config
	mergeString(&target.Browser.Browser, source.Browser.Browser)
	target.Browser.NoOpen = target.Browser.NoOpen || source.Browser.NoOpen

	// Watcher config
	mergeInt(&target.Watcher.IntervalMs, source.Watcher.IntervalMs)
	mergeInt(&target.Watcher.DebounceMs, source.Watcher.DebounceMs)
	target.Watcher.Enabled = target.Watcher.Enabled || source.Watcher.Enabled

	// Logging config
	mergeString(&target.Logging.Level, source.Logging.Level)
	mergeString(&target.Logging.File, source.Logging.File)
	target.Logging.JSONFormat = target.Logging.JSONFormat || source.Logging.JSONFormat
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

func mergeSlice(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = append([]string(nil), src...)
	}
}

// deepCopy creates a deep copy of a configuration
func deepCopy(src *entities.Config) *entities.Config {
	if src == nil {
		return nil
	}

	dst := *src
	if src.Server.CORSOrigins != nil {
		dst.Server.CORSOrigins = append([]string(nil), src.Server.CORSOrigins...)
	}
	if src.Source.AllowedHosts != nil {
		dst.Source.AllowedHosts = append([]string(nil), src.Source.AllowedHosts...)
	}

	return &dst
}

// Ensure ConfigMerger implements ports.ConfigMerger
var _ ports.ConfigMerger = (*ConfigMerger)(nil)
