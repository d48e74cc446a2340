// Package inkpost is a small multi-user blog built with Go, Echo, and templ.
// Visitors read posts, registered users comment, and the admin (the first
// account ever registered) writes, edits, and deletes posts.
//
// Callers provide templ components via ViewFuncs (a default set lives in the
// views package); inkpost owns the handlers, middleware, and SQLite storage.
package inkpost

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds the templ components the app calls when rendering pages.
type ViewFuncs struct {
	Home        func(pc PageContext, posts []BlogPost) templ.Component
	Post        func(pc PageContext, post BlogPost, comments []Comment, form CommentForm, errs FormErrors) templ.Component
	Register    func(pc PageContext, form RegisterForm, errs FormErrors) templ.Component
	Login       func(pc PageContext, form LoginForm, errs FormErrors) templ.Component
	PostEditor  func(pc PageContext, action string, form PostForm, errs FormErrors, isEdit bool) templ.Component
	About       func(pc PageContext) templ.Component
	Contact     func(pc PageContext) templ.Component
	AdminImages func(pc PageContext, images []Image) templ.Component
	NotFound    func(pc PageContext) templ.Component
	Forbidden   func(pc PageContext) templ.Component
	ServerError func(pc PageContext) templ.Component
}

// App is the central inkpost application. It wires together the store,
// cache, accounts, handlers, middleware, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *PostCache
	Accounts *Accounts
	Views    ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	now          func() time.Time
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		now:    time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(cfg.logLevel())

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the database and registers middleware and routes. Start calls
// it; tests call it directly and drive a.Echo with httptest.
func (a *App) Init() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("inkpost: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("inkpost: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)
	a.Accounts = NewAccounts(a.Store)
	a.loginLimiter = NewLoginLimiter(a.Config.LoginMaxFailures, a.Config.LoginWindow)

	a.Echo.Validator = NewFormValidator()
	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves HTTP until the server is closed.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("inkpost listening on %s", a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/post/:id", withIdentity(a.handlePost))
	e.POST("/post/:id", withIdentity(a.handleComment))
	e.GET("/about", a.handleAbout)
	e.GET("/contact", a.handleContact)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	// Accounts
	e.GET("/register", a.handleRegisterForm)
	e.POST("/register", a.handleRegister)
	e.GET("/login", a.handleLoginForm)
	e.POST("/login", a.handleLogin)
	e.GET("/logout", a.handleLogout)

	// Admin routes
	e.GET("/new-post", adminOnly(a.handleNewPostForm))
	e.POST("/new-post", adminOnly(a.handleNewPost))
	e.GET("/edit-post/:id", adminOnly(a.handleEditPostForm))
	e.POST("/edit-post/:id", adminOnly(a.handleEditPost))
	e.GET("/delete/:id", adminOnly(a.handleDeletePost))
	e.GET("/admin/images", adminOnly(a.handleImageList))
	e.POST("/admin/images/upload", adminOnly(a.handleImageUpload))
	e.POST("/admin/images/:filename/delete", adminOnly(a.handleImageDelete))
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("inkpost: required environment variable %s is not set", key)
	}
	return v
}
