package inkpost

import (
	"strconv"
	"time"
)

// Role is the privilege level carried by a User.
type Role string

const (
	RoleReader Role = "reader"
	RoleAdmin  Role = "admin"
)

// User is a registered account. The first account created is the admin.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// IsAdmin reports whether u may manage posts. A nil user is never admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// BlogPost is the core content type stored in SQLite and rendered by templates.
type BlogPost struct {
	ID       int64
	Title    string
	Subtitle string
	Date     string // display date, e.g. "April 05, 2024"
	Body     string // sanitized HTML
	ImageURL string
	AuthorID int64
	Author   User
}

// Link returns the post's detail path.
func (p BlogPost) Link() string {
	return "/post/" + strconv.FormatInt(p.ID, 10)
}

// Comment is a reader's note attached to a post.
type Comment struct {
	ID          int64
	Text        string
	CommenterID int64
	PostID      int64
	CreatedAt   time.Time
	Commenter   User
}

// Image is an uploaded picture in the admin image library.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// URL returns the public path the image is served from.
func (i Image) URL() string {
	return "/public/" + uploadsSubdir + "/" + i.Filename
}
