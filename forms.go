package inkpost

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RegisterForm is the account creation form.
type RegisterForm struct {
	Name     string `form:"name" validate:"required,max=250"`
	Email    string `form:"email" validate:"required,email,max=250"`
	Password string `form:"password" validate:"required,min=8,maxbytes=72"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// PostForm creates or edits a blog post.
type PostForm struct {
	Title    string `form:"title" validate:"required,max=250"`
	Subtitle string `form:"subtitle" validate:"required,max=250"`
	ImageURL string `form:"img_url" validate:"required,max=250,imageurl"`
	Body     string `form:"body" validate:"required"`
}

// CommentForm is a reader's comment on a post.
type CommentForm struct {
	Text string `form:"text" validate:"required,max=500"`
}

// FormErrors maps a form field name to a user-facing message.
type FormErrors map[string]string

// Has reports whether field has an error.
func (fe FormErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// FormValidator adapts go-playground/validator to echo's Validator interface.
type FormValidator struct {
	v *validator.Validate
}

// NewFormValidator returns a validator that reads field names from form tags.
func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if strings.HasPrefix(s, "/public/"+uploadsSubdir+"/") {
			return true
		}
		return v.Var(s, "url") == nil
	})
	// bcrypt only looks at the first 72 bytes, so passwords are bounded in
	// bytes rather than runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	return &FormValidator{v: v}
}

// Validate implements echo.Validator.
func (fv *FormValidator) Validate(i any) error {
	return fv.v.Struct(i)
}

// bindForm binds the request into dst after trimming, then validates it.
// It returns nil FormErrors on success, field errors on validation failure,
// or an error for malformed requests.
func bindForm(c echo.Context, dst any) (FormErrors, error) {
	if err := c.Bind(dst); err != nil {
		return nil, err
	}
	trimStrings(dst)
	err := c.Validate(dst)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	fe := FormErrors{}
	for _, ferr := range verrs {
		fe[ferr.Field()] = fieldMessage(ferr)
	}
	return fe, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "url", "imageurl":
		return "Enter a valid URL."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Must be at most %s bytes.", fe.Param())
	default:
		return "Invalid value."
	}
}

// trimStrings trims surrounding whitespace from the text fields of the known
// forms. Passwords and the rich-text body are left alone.
func trimStrings(dst any) {
	switch f := dst.(type) {
	case *RegisterForm:
		f.Name = strings.TrimSpace(f.Name)
		f.Email = strings.TrimSpace(f.Email)
	case *LoginForm:
		f.Email = strings.TrimSpace(f.Email)
	case *PostForm:
		f.Title = strings.TrimSpace(f.Title)
		f.Subtitle = strings.TrimSpace(f.Subtitle)
		f.ImageURL = strings.TrimSpace(f.ImageURL)
	case *CommentForm:
		f.Text = strings.TrimSpace(f.Text)
	}
}
