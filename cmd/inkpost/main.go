// Command inkpost serves an inkpost blog. Settings come from INKPOST_*
// environment variables, optionally loaded from a .env file.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/eringen/inkpost"
	"github.com/eringen/inkpost/views"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := inkpost.SiteConfig{
		Name:          inkpost.EnvOr("INKPOST_SITE_NAME", "Blog"),
		URL:           inkpost.EnvOr("INKPOST_URL", "http://localhost:5002"),
		Description:   inkpost.EnvOr("INKPOST_DESCRIPTION", "A collection of random musings."),
		Addr:          inkpost.EnvOr("INKPOST_ADDR", ":5002"),
		DatabasePath:  inkpost.EnvOr("INKPOST_DB", "data/posts.db"),
		StaticDir:     inkpost.EnvOr("INKPOST_STATIC", "public"),
		SessionSecret: inkpost.MustEnv("INKPOST_SECRET"),
		CookieSecure:  inkpost.EnvOr("INKPOST_COOKIE_SECURE", "false") == "true",
		LogLevel:      inkpost.EnvOr("INKPOST_LOG_LEVEL", "info"),
	}
	if v := os.Getenv("INKPOST_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("inkpost: bad INKPOST_CACHE_TTL %q: %v", v, err)
		}
		cfg.PostCacheTTL = ttl
	}

	app := inkpost.New(cfg, views.Funcs())
	defer app.Close()

	go func() {
		if err := app.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("inkpost: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	app.Echo.Logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(ctx); err != nil {
		app.Echo.Logger.Errorf("forced shutdown: %v", err)
	}
}
