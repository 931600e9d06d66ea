package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/zorro901/presenotion/internal/domain/entities"
)

// Default server settings
const (
	DefaultHost = "localhost"
	DefaultPort = 3000
)

// GetDefaultConfig returns the built-in defaults. Environment overrides are
// applied separately by ConfigMerger.ApplyEnvVars.
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     30,
			WriteTimeout:    30,
			ShutdownTimeout: 5,
			Environment:     "development",
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		Presentation: entities.PresentationConfig{
			BaseFontSize:         entities.DefaultBaseFontSize,
			MinFontSize:          entities.DefaultMinFontSize,
			ResizeDebounceMs:     int(entities.DefaultResizeDebounce.Milliseconds()),
			DigitTimeoutMs:       int(entities.DefaultDigitTimeout.Milliseconds()),
			BoundaryExcludeLevel: entities.DefaultBoundaryExcludeLevel,
			DefaultTitle:         entities.DefaultSlideTitle,
			EmptyTitle:           entities.DefaultEmptyTitle,
			EmptyMessage:         entities.DefaultEmptyMessage,
		},
		Source: entities.SourceConfig{
			AllowedHosts:  []string{"notion.so", "www.notion.so", "*.notion.site"},
			LoadTimeoutMs: 30000,
		},
		Browser: entities.BrowserConfig{
			Browser: "default",
		},
		Watcher: entities.WatcherConfig{
			IntervalMs: 200,
			DebounceMs: 500,
		},
		Logging: entities.LoggingConfig{
			Level: string(entities.LogLevelInfo),
		},
	}
}

// envPrefix namespaces every environment override
const envPrefix = "PRESENOTION_"

// lookupEnv returns a non-empty environment value
func lookupEnv(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(envPrefix + key))
	return value, value != ""
}

// envInt returns the environment variable as int when it parses
func envInt(key string) (int, bool) {
	value, ok := lookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	return n, err == nil
}

// envBool returns the environment variable as bool when it parses
func envBool(key string) (bool, bool) {
	value, ok := lookupEnv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(value)
	return b, err == nil
}

// envSlice splits a comma separated environment variable
func envSlice(key string) ([]string, bool) {
	value, ok := lookupEnv(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result, len(result) > 0
}
