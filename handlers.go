package inkpost

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// notFoundOr turns a store ErrNotFound into echo's 404 and passes anything
// else through.
func notFoundOr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.ErrNotFound
	}
	return err
}

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	pc, err := a.pageContext(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(pc, posts))
}

func (a *App) handlePost(c echo.Context, _ *User) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	return a.renderPost(c, http.StatusOK, id, CommentForm{}, nil)
}

// handleComment stores a comment from the signed-in user and redirects back
// to the post so a refresh does not resubmit.
func (a *App) handleComment(c echo.Context, u *User) error {
	ctx := c.Request().Context()
	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	post, err := a.Store.GetPost(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	if u == nil {
		if err := addFlash(c, "Login required to comment!"); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/login")
	}

	var form CommentForm
	errs, err := bindForm(c, &form)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	text := SanitizeComment(form.Text)
	if errs == nil && text == "" {
		errs = FormErrors{"text": "This field is required."}
	}
	if errs != nil {
		return a.renderPost(c, http.StatusUnprocessableEntity, id, form, errs)
	}

	comment := Comment{Text: text, CommenterID: u.ID, PostID: post.ID}
	if err := a.Store.CreateComment(ctx, &comment); err != nil {
		return err
	}
	c.Logger().Infof("comment %d by user %d on post %d", comment.ID, u.ID, post.ID)
	return c.Redirect(http.StatusSeeOther, post.Link())
}

func (a *App) renderPost(c echo.Context, code int, id int64, form CommentForm, errs FormErrors) error {
	ctx := c.Request().Context()
	post, err := a.Store.GetPost(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}
	comments, err := a.Store.ListComments(ctx, id)
	if err != nil {
		return err
	}
	pc, err := a.pageContext(c)
	if err != nil {
		return err
	}
	return RenderStatus(c, code, a.Views.Post(pc, post, comments, form, errs))
}

func (a *App) handleAbout(c echo.Context) error {
	pc, err := a.pageContext(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.About(pc))
}

func (a *App) handleContact(c echo.Context) error {
	pc, err := a.pageContext(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Contact(pc))
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	pc := a.basePageContext(c)
	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound(pc))
	case code == http.StatusForbidden:
		_ = RenderStatus(c, code, a.Views.Forbidden(pc))
	case code >= 500:
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(pc))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
