package inkpost

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (a *App) handleRegisterForm(c echo.Context) error {
	pc, err := a.pageContext(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Register(pc, RegisterForm{}, nil))
}

func (a *App) handleRegister(c echo.Context) error {
	var form RegisterForm
	errs, err := bindForm(c, &form)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errs != nil {
		return a.renderRegister(c, http.StatusUnprocessableEntity, form, errs)
	}

	u, err := a.Accounts.Register(c.Request().Context(), form.Name, form.Email, form.Password)
	if errors.Is(err, ErrEmailTaken) {
		c.Logger().Warnf("registration for existing email %q", form.Email)
		if err := addFlash(c, "User already exists! Try login."); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	if errors.Is(err, ErrPasswordTooLong) {
		return a.renderRegister(c, http.StatusUnprocessableEntity, form, FormErrors{"password": "Must be at most 72 bytes."})
	}
	if err != nil {
		return err
	}

	c.Logger().Infof("user %d registered (role %s)", u.ID, u.Role)
	if err := setUserSession(c, u.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) renderRegister(c echo.Context, code int, form RegisterForm, errs FormErrors) error {
	pc, err := a.pageContext(c)
	if err != nil {
		return err
	}
	form.Password = ""
	return RenderStatus(c, code, a.Views.Register(pc, form, errs))
}

func (a *App) handleLoginForm(c echo.Context) error {
	pc, err := a.pageContext(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Login(pc, LoginForm{}, nil))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if blocked, wait := a.loginLimiter.Blocked(ip); blocked {
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}

	var form LoginForm
	errs, err := bindForm(c, &form)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errs != nil {
		return a.renderLogin(c, http.StatusUnprocessableEntity, form, errs, "")
	}

	u, err := a.Accounts.Authenticate(c.Request().Context(), form.Email, form.Password)
	switch {
	case errors.Is(err, ErrUnknownEmail):
		a.loginLimiter.Fail(ip)
		c.Logger().Warnf("login failed for unknown email from %s", ip)
		return a.renderLogin(c, http.StatusUnauthorized, form, nil, "Wrong email! Please try again.")
	case errors.Is(err, ErrWrongPassword):
		a.loginLimiter.Fail(ip)
		c.Logger().Warnf("login failed for user with wrong password from %s", ip)
		return a.renderLogin(c, http.StatusUnauthorized, form, nil, "Wrong password! Please try again.")
	case err != nil:
		return err
	}

	a.loginLimiter.Reset(ip)
	if err := setUserSession(c, u.ID); err != nil {
		return err
	}
	c.Logger().Infof("user %d logged in", u.ID)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) renderLogin(c echo.Context, code int, form LoginForm, errs FormErrors, notice string) error {
	pc, err := a.pageContext(c)
	if err != nil {
		return err
	}
	if notice != "" {
		pc.Flashes = append(pc.Flashes, notice)
	}
	form.Password = ""
	return RenderStatus(c, code, a.Views.Login(pc, form, errs))
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
