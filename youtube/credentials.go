package youtube

import "fmt"

// Credentials supplies yt-dlp with browser authentication state so
// access-restricted videos can be downloaded. Implementations translate a
// cookie source into yt-dlp command-line arguments.
type Credentials interface {
	// Args returns the yt-dlp arguments that attach the credentials,
	// or nil when no authentication is configured.
	Args() []string
	// Describe returns a short human-readable description for logs.
	Describe() string
}

// NoAuth is the default: downloads proceed unauthenticated.
type NoAuth struct{}

func (NoAuth) Args() []string   { return nil }
func (NoAuth) Describe() string { return "none" }

// BrowserCookies reuses the session cookies of a locally installed browser
// via yt-dlp's --cookies-from-browser.
type BrowserCookies struct {
	// Browser is the browser identifier yt-dlp understands
	// ("chrome", "firefox", "edge", "safari", ...).
	Browser string
}

func (b BrowserCookies) Args() []string {
	return []string{"--cookies-from-browser", b.Browser}
}

func (b BrowserCookies) Describe() string {
	return fmt.Sprintf("browser session (%s)", b.Browser)
}

// CookieFile supplies cookies exported to a Netscape-format cookie file.
type CookieFile struct {
	// Path is the cookie file location.
	Path string
}

func (c CookieFile) Args() []string {
	return []string{"--cookies", c.Path}
}

func (c CookieFile) Describe() string {
	return fmt.Sprintf("cookie file (%s)", c.Path)
}
