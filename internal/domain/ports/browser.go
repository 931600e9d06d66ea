package ports

// BrowserLauncher opens the presentation page in the user's browser
type BrowserLauncher interface {
	// Launch opens a URL in the configured or default browser
	Launch(url string) error
}
