package inkpost

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

var duplicateTitleErrors = FormErrors{"title": "A post with this title already exists."}

// postBody sanitizes the submitted body. A body with nothing left after
// sanitizing is reported as missing.
func postBody(form PostForm, errs FormErrors) (string, FormErrors) {
	body := SanitizeBody(form.Body)
	if errs == nil && strings.TrimSpace(body) == "" {
		errs = FormErrors{"body": "This field is required."}
	}
	return body, errs
}

func (a *App) handleNewPostForm(c echo.Context, _ *User) error {
	return a.renderEditor(c, http.StatusOK, "/new-post", PostForm{}, nil)
}

func (a *App) handleNewPost(c echo.Context, u *User) error {
	var form PostForm
	errs, err := bindForm(c, &form)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	body, errs := postBody(form, errs)
	if errs != nil {
		return a.renderEditor(c, http.StatusUnprocessableEntity, "/new-post", form, errs)
	}

	post := BlogPost{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     body,
		ImageURL: form.ImageURL,
		AuthorID: u.ID,
		Date:     FormatPostDate(a.now()),
	}
	err = a.Store.CreatePost(c.Request().Context(), &post)
	if errors.Is(err, ErrDuplicateTitle) {
		return a.renderEditor(c, http.StatusConflict, "/new-post", form, duplicateTitleErrors)
	}
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	c.Logger().Infof("post %d created by user %d", post.ID, u.ID)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) handleEditPostForm(c echo.Context, _ *User) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	post, err := a.Store.GetPost(c.Request().Context(), id)
	if err != nil {
		return notFoundOr(err)
	}
	form := PostForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImageURL: post.ImageURL,
		Body:     post.Body,
	}
	return a.renderEditor(c, http.StatusOK, "/edit-post/"+c.Param("id"), form, nil)
}

// handleEditPost overwrites a post and makes the editor its author.
func (a *App) handleEditPost(c echo.Context, u *User) error {
	ctx := c.Request().Context()
	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	post, err := a.Store.GetPost(ctx, id)
	if err != nil {
		return notFoundOr(err)
	}

	var form PostForm
	errs, err := bindForm(c, &form)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	body, errs := postBody(form, errs)
	if errs != nil {
		return a.renderEditor(c, http.StatusUnprocessableEntity, "/edit-post/"+c.Param("id"), form, errs)
	}

	post.Title = form.Title
	post.Subtitle = form.Subtitle
	post.ImageURL = form.ImageURL
	post.Body = body
	post.AuthorID = u.ID
	err = a.Store.UpdatePost(ctx, post)
	if errors.Is(err, ErrDuplicateTitle) {
		return a.renderEditor(c, http.StatusConflict, "/edit-post/"+c.Param("id"), form, duplicateTitleErrors)
	}
	if err != nil {
		return notFoundOr(err)
	}
	a.Cache.Invalidate()
	c.Logger().Infof("post %d edited by user %d", post.ID, u.ID)
	return c.Redirect(http.StatusSeeOther, post.Link())
}

func (a *App) handleDeletePost(c echo.Context, u *User) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return echo.ErrNotFound
	}
	if err := a.Store.DeletePost(c.Request().Context(), id); err != nil {
		return notFoundOr(err)
	}
	a.Cache.Invalidate()
	c.Logger().Infof("post %d deleted by user %d", id, u.ID)
	return c.Redirect(http.StatusSeeOther, "/")
}

// renderEditor shows the post form posting to action; any action other than
// /new-post is an edit.
func (a *App) renderEditor(c echo.Context, code int, action string, form PostForm, errs FormErrors) error {
	pc, err := a.pageContext(c)
	if err != nil {
		return err
	}
	return RenderStatus(c, code, a.Views.PostEditor(pc, action, form, errs, action != "/new-post"))
}
