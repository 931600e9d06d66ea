package browser

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func urlArgs(url string) []string { return []string{url} }

// testLauncher builds a launcher whose installed commands are listed in installed
func testLauncher(preferred string, installed ...string) (*Launcher, *[]*exec.Cmd) {
	var started []*exec.Cmd
	l := NewLauncher(preferred, nil)
	l.browsers = []Browser{
		{Name: "Default", Command: "xdg-open", Args: urlArgs},
		{Name: "Chrome", Command: "google-chrome", Args: urlArgs},
		{Name: "Firefox", Command: "firefox", Args: urlArgs},
	}
	l.lookPath = func(file string) (string, error) {
		for _, cmd := range installed {
			if cmd == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
	l.start = func(cmd *exec.Cmd) error {
		started = append(started, cmd)
		return nil
	}
	return l, &started
}

func TestLauncherLaunch(t *testing.T) {
	t.Run("starts first installed browser", func(t *testing.T) {
		l, started := testLauncher("", "google-chrome", "firefox")

		require.NoError(t, l.Launch("http://localhost:3000/"))

		require.Len(t, *started, 1)
		assert.Equal(t, []string{"google-chrome", "http://localhost:3000/"}, (*started)[0].Args)
	})

	t.Run("without browsers", func(t *testing.T) {
		l, _ := testLauncher("")
		l.browsers = nil

		err := l.Launch("http://localhost:3000/")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "browser selection")
	})

	t.Run("start failure", func(t *testing.T) {
		l, _ := testLauncher("", "xdg-open")
		l.start = func(*exec.Cmd) error { return errors.New("exec format error") }

		err := l.Launch("http://localhost:3000/")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "launching Default")
	})
}

func TestSelectBrowser(t *testing.T) {
	tests := []struct {
		name      string
		preferred string
		installed []string
		want      string
		wantErr   string
	}{
		{name: "platform order", installed: []string{"xdg-open", "firefox"}, want: "Default"},
		{name: "default keyword", preferred: "default", installed: []string{"xdg-open", "firefox"}, want: "Default"},
		{name: "preferred installed", preferred: "firefox", installed: []string{"xdg-open", "firefox"}, want: "Firefox"},
		{name: "preferred case insensitive", preferred: "CHROME", installed: []string{"xdg-open", "google-chrome"}, want: "Chrome"},
		{name: "preferred missing falls back", preferred: "firefox", installed: []string{"google-chrome"}, want: "Chrome"},
		{name: "nothing installed", wantErr: "no supported browsers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := testLauncher(tt.preferred, tt.installed...)

			browser, err := l.selectBrowser()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, browser.Name)
		})
	}
}

func TestDetectBrowsers(t *testing.T) {
	testURL := "http://localhost:3000/"
	browsers := detectBrowsers()

	switch runtime.GOOS {
	case "darwin", "linux", "windows":
		require.NotEmpty(t, browsers)
		assert.Equal(t, "Default", browsers[0].Name)
		for _, b := range browsers {
			assert.Contains(t, strings.Join(b.Args(testURL), " "), testURL)
		}
	default:
		assert.Empty(t, browsers)
	}
}
