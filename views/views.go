// Package views is the default look of an inkpost site. Pages are
// html/template files embedded in the binary and exposed to the app as
// templ components through Funcs.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"path"

	"github.com/a-h/templ"

	"github.com/eringen/inkpost"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageData is what every page template executes against. The embedded
// PageContext supplies .User, .Flashes, .CSRFToken, .Site, .LoggedIn and
// .IsAdmin.
type pageData struct {
	inkpost.PageContext
	Title    string
	Posts    []inkpost.BlogPost
	Post     inkpost.BlogPost
	Comments []inkpost.Comment
	Images   []inkpost.Image
	Form     any
	Errors   inkpost.FormErrors
	Action   string
	IsEdit   bool
}

var funcs = template.FuncMap{
	"gravatar":   inkpost.GravatarURL,
	"trusted":    func(s string) template.HTML { return template.HTML(s) },
	"pathEscape": url.PathEscape,
	"siteJSONLD": websiteJSONLD,
	"postJSONLD": blogPostingJSONLD,
	"kilobytes":  func(n int) string { return fmt.Sprintf("%.1f KB", float64(n)/1024) },
}

var pages = mustParsePages()

// mustParsePages clones the base layout once per page file so each page can
// define its own content, header and scripts blocks.
func mustParsePages() map[string]*template.Template {
	base := template.Must(template.New("base.html").Funcs(funcs).ParseFS(templateFS, "templates/base.html"))

	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		file := path.Base(name)
		if file == "base.html" {
			continue
		}
		t := template.Must(template.Must(base.Clone()).ParseFS(templateFS, name))
		out[file] = t
	}
	return out
}

func page(name string, data pageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("views: unknown page %q", name)
		}
		return t.ExecuteTemplate(w, "base", data)
	})
}

// Funcs returns the default ViewFuncs.
func Funcs() inkpost.ViewFuncs {
	return inkpost.ViewFuncs{
		Home:        Home,
		Post:        Post,
		Register:    Register,
		Login:       Login,
		PostEditor:  PostEditor,
		About:       About,
		Contact:     Contact,
		AdminImages: AdminImages,
		NotFound:    NotFound,
		Forbidden:   Forbidden,
		ServerError: ServerError,
	}
}

// Home lists every post, oldest first.
func Home(pc inkpost.PageContext, posts []inkpost.BlogPost) templ.Component {
	return page("index.html", pageData{PageContext: pc, Posts: posts})
}

// Post shows one post with its comments and the comment form.
func Post(pc inkpost.PageContext, post inkpost.BlogPost, comments []inkpost.Comment, form inkpost.CommentForm, errs inkpost.FormErrors) templ.Component {
	return page("post.html", pageData{
		PageContext: pc,
		Title:       post.Title,
		Post:        post,
		Comments:    comments,
		Form:        form,
		Errors:      errs,
	})
}

// Register renders the sign-up form.
func Register(pc inkpost.PageContext, form inkpost.RegisterForm, errs inkpost.FormErrors) templ.Component {
	return page("register.html", pageData{PageContext: pc, Title: "Register", Form: form, Errors: errs})
}

// Login renders the sign-in form.
func Login(pc inkpost.PageContext, form inkpost.LoginForm, errs inkpost.FormErrors) templ.Component {
	return page("login.html", pageData{PageContext: pc, Title: "Log In", Form: form, Errors: errs})
}

// PostEditor renders the create/edit form. action is where the form posts.
func PostEditor(pc inkpost.PageContext, action string, form inkpost.PostForm, errs inkpost.FormErrors, isEdit bool) templ.Component {
	title := "New Post"
	if isEdit {
		title = "Edit Post"
	}
	return page("make-post.html", pageData{
		PageContext: pc,
		Title:       title,
		Form:        form,
		Errors:      errs,
		Action:      action,
		IsEdit:      isEdit,
	})
}

// About renders the about page.
func About(pc inkpost.PageContext) templ.Component {
	return page("about.html", pageData{PageContext: pc, Title: "About"})
}

// Contact renders the contact page.
func Contact(pc inkpost.PageContext) templ.Component {
	return page("contact.html", pageData{PageContext: pc, Title: "Contact"})
}

// AdminImages lists uploaded images with upload and delete forms.
func AdminImages(pc inkpost.PageContext, images []inkpost.Image) templ.Component {
	return page("images.html", pageData{PageContext: pc, Title: "Images", Images: images})
}

// NotFound is the 404 page.
func NotFound(pc inkpost.PageContext) templ.Component {
	return page("404.html", pageData{PageContext: pc, Title: "Not Found"})
}

// Forbidden is the 403 page shown to non-admins on admin routes.
func Forbidden(pc inkpost.PageContext) templ.Component {
	return page("403.html", pageData{PageContext: pc, Title: "Forbidden"})
}

// ServerError is the 500 page.
func ServerError(pc inkpost.PageContext) templ.Component {
	return page("500.html", pageData{PageContext: pc, Title: "Something went wrong"})
}
