package inkpost

import (
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// SiteConfig holds all configuration for an inkpost site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:5002")
	Description string // Site description for RSS and meta tags

	Addr         string // Listen address (default ":5002")
	DatabasePath string // SQLite path (default "data/posts.db")
	StaticDir    string // Static assets directory (default "public")

	SessionSecret string // Required: session signing secret
	CookieSecure  bool   // Set true for HTTPS

	PostCacheTTL time.Duration // Post listing cache TTL (default 5min)

	LoginMaxFailures int           // Failed logins allowed per window (default 5)
	LoginWindow      time.Duration // Failed login window (default 1min)

	LogLevel string // debug, info, warn, error or off (default "info")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:5002"
	}
	if c.Addr == "" {
		c.Addr = ":5002"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/posts.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.LoginMaxFailures == 0 {
		c.LoginMaxFailures = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// logLevel maps LogLevel onto echo's logger levels.
func (c *SiteConfig) logLevel() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithClock overrides the time source used to stamp new posts.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
