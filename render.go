package inkpost

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// PageContext is the per-request data every view receives: who is signed
// in, pending flash notices, the CSRF token for forms and site branding.
type PageContext struct {
	User      *User
	Flashes   []string
	CSRFToken string
	Site      SiteInfo
}

// SiteInfo is the public branding subset of SiteConfig handed to views.
type SiteInfo struct {
	Name        string
	URL         string
	Description string
}

// LoggedIn reports whether the page is rendered for a signed-in user.
func (pc PageContext) LoggedIn() bool {
	return pc.User != nil
}

// IsAdmin reports whether the page is rendered for the admin.
func (pc PageContext) IsAdmin() bool {
	return pc.User.IsAdmin()
}

// pageContext builds the PageContext for c, consuming queued flashes.
func (a *App) pageContext(c echo.Context) (PageContext, error) {
	flashes, err := popFlashes(c)
	if err != nil {
		return PageContext{}, err
	}
	pc := a.basePageContext(c)
	pc.Flashes = flashes
	return pc, nil
}

// basePageContext is pageContext without touching the session.
func (a *App) basePageContext(c echo.Context) PageContext {
	return PageContext{
		User:      CurrentUser(c),
		CSRFToken: CsrfToken(c),
		Site: SiteInfo{
			Name:        a.Config.Name,
			URL:         a.Config.URL,
			Description: a.Config.Description,
		},
	}
}

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
