// Package browser opens the presentation page in the user's browser.
package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/zorro901/presenotion/internal/domain/ports"
)

// Launcher implements the BrowserLauncher interface
type Launcher struct {
	browsers  []Browser
	preferred string
	logger    *slog.Logger

	lookPath func(file string) (string, error)
	start    func(cmd *exec.Cmd) error
}

// Browser represents a browser configuration
type Browser struct {
	Name    string
	Command string
	Args    func(url string) []string
}

// NewLauncher creates a launcher. preferred names a browser to try first
// ("chrome", "firefox"...); empty or "default" uses the platform order.
func NewLauncher(preferred string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		browsers:  detectBrowsers(),
		preferred: preferred,
		logger:    logger.With("component", "browser"),
		lookPath:  exec.LookPath,
		start:     startDetached,
	}
}

// Launch opens url in the selected browser without waiting for it to exit
func (l *Launcher) Launch(url string) error {
	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	cmd := exec.Command(browser.Command, browser.Args(url)...) // #nosec G204 - browser command validated by selectBrowser
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}

	l.logger.Info("opened browser", "browser", browser.Name, "url", url)
	return nil
}

// Detect returns the name of the browser Launch would use
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

// selectBrowser returns the preferred browser if it is installed, otherwise
// the first installed browser in platform order
func (l *Launcher) selectBrowser() (*Browser, error) {
	if len(l.browsers) == 0 {
		return nil, errors.New("no browsers available")
	}

	var fallback *Browser
	for i := range l.browsers {
		candidate := &l.browsers[i]
		if _, err := l.lookPath(candidate.Command); err != nil {
			continue
		}
		if l.isPreferred(candidate) {
			return candidate, nil
		}
		if fallback == nil {
			fallback = candidate
		}
	}

	if fallback == nil {
		return nil, errors.New("no supported browsers found on this system")
	}
	if l.preferred != "" && !strings.EqualFold(l.preferred, "default") {
		l.logger.Warn("preferred browser not found, using fallback", "preferred", l.preferred, "browser", fallback.Name)
	}
	return fallback, nil
}

func (l *Launcher) isPreferred(b *Browser) bool {
	if l.preferred == "" || strings.EqualFold(l.preferred, "default") {
		return false
	}
	return strings.EqualFold(b.Name, l.preferred)
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}

	// Don't wait for browser to close
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// detectBrowsers lists the launch commands for the current platform
func detectBrowsers() []Browser {
	urlOnly := func(url string) []string { return []string{url} }

	switch runtime.GOOS {
	case "darwin":
		openApp := func(app string) func(string) []string {
			return func(url string) []string { return []string{"-a", app, url} }
		}
		return []Browser{
			{Name: "Default", Command: "open", Args: urlOnly},
			{Name: "Chrome", Command: "open", Args: openApp("Google Chrome")},
			{Name: "Safari", Command: "open", Args: openApp("Safari")},
			{Name: "Firefox", Command: "open", Args: openApp("Firefox")},
		}
	case "linux":
		return []Browser{
			{Name: "Default", Command: "xdg-open", Args: urlOnly},
			{Name: "Chrome", Command: "google-chrome", Args: urlOnly},
			{Name: "Chromium", Command: "chromium", Args: urlOnly},
			{Name: "Firefox", Command: "firefox", Args: urlOnly},
		}
	case "windows":
		start := func(prefix ...string) func(string) []string {
			return func(url string) []string {
				return append(append([]string{"/c", "start", ""}, prefix...), url)
			}
		}
		return []Browser{
			{Name: "Default", Command: "cmd", Args: start()},
			{Name: "Chrome", Command: "cmd", Args: start("chrome")},
			{Name: "Edge", Command: "cmd", Args: start("msedge")},
		}
	default:
		return []Browser{}
	}
}

// Ensure Launcher implements ports.BrowserLauncher
var _ ports.BrowserLauncher = (*Launcher)(nil)
