package inkpost

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName = "inkpost_session"
	userIDKey   = "user_id"
	identityKey = "inkpost.identity"
)

// IdentityHandler is a handler that receives the already-resolved identity
// of the caller. u is nil for anonymous requests.
type IdentityHandler func(c echo.Context, u *User) error

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// loadIdentity resolves the session's user id into a *User once per request.
// A session pointing at a user that no longer exists is cleared.
func (a *App) loadIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := session.Get(sessionName, c)
		if err != nil {
			// Undecodable cookie, e.g. after a secret rotation.
			return next(c)
		}
		id, ok := sess.Values[userIDKey].(int64)
		if !ok {
			return next(c)
		}
		u, err := a.Store.UserByID(c.Request().Context(), id)
		switch {
		case err == nil:
			c.Set(identityKey, &u)
		case errors.Is(err, ErrNotFound):
			delete(sess.Values, userIDKey)
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				return err
			}
		default:
			return err
		}
		return next(c)
	}
}

// CurrentUser returns the identity resolved for this request, or nil.
func CurrentUser(c echo.Context) *User {
	u, _ := c.Get(identityKey).(*User)
	return u
}

// withIdentity adapts an IdentityHandler to echo.
func withIdentity(h IdentityHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h(c, CurrentUser(c))
	}
}

// adminOnly guards h so that only the admin reaches it. Everyone else,
// anonymous callers included, gets 403 with no redirect.
func adminOnly(h IdentityHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		u := CurrentUser(c)
		if !u.IsAdmin() {
			return echo.ErrForbidden
		}
		return h(c, u)
	}
}

func setUserSession(c echo.Context, id int64) error {
	sess, err := session.Get(sessionName, c)
	if err != nil && sess == nil {
		return err
	}
	sess.Values[userIDKey] = id
	return sess.Save(c.Request(), c.Response())
}

func clearUserSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil && sess == nil {
		return err
	}
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// addFlash queues a one-time notice shown on the next rendered page.
func addFlash(c echo.Context, msg string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil && sess == nil {
		return err
	}
	sess.AddFlash(msg)
	return sess.Save(c.Request(), c.Response())
}

// popFlashes returns and clears any queued notices.
func popFlashes(c echo.Context) ([]string, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return nil, nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			msgs = append(msgs, s)
		}
	}
	return msgs, sess.Save(c.Request(), c.Response())
}
