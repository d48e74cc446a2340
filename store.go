package inkpost

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store wraps a SQLite database and provides CRUD operations for users,
// posts, comments and uploaded images.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// foreign_keys and busy_timeout are per-connection, so they go in the DSN
	// where every pooled connection picks them up.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE COLLATE NOCASE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'reader',
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS blog_posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL UNIQUE,
    subtitle TEXT NOT NULL,
    date TEXT NOT NULL,
    body TEXT NOT NULL,
    img_url TEXT NOT NULL,
    author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL,
    commenter_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    post_id INTEGER NOT NULL REFERENCES blog_posts(id) ON DELETE CASCADE,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id);
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateUser inserts u and fills in its ID, Role and CreatedAt. The first
// user ever inserted becomes the admin; the role is decided inside the
// INSERT so two concurrent first registrations cannot both win.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO users (name, email, password_hash, role, created_at)
VALUES (?, ?, ?, CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'reader' ELSE 'admin' END, ?)`,
		u.Name, u.Email, u.PasswordHash, now.Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	created, err := s.UserByID(ctx, id)
	if err != nil {
		return err
	}
	*u = created
	return nil
}

const userColumns = `id, name, email, password_hash, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	var role, created string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &created); err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	u.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return u, nil
}

// UserByID returns the user with the given id.
func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// UserByEmail returns the user registered with email (case-insensitive).
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("user %q: %w", email, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

const postSelect = `
SELECT p.id, p.title, p.subtitle, p.date, p.body, p.img_url, p.author_id,
       u.id, u.name, u.email, u.role
FROM blog_posts p
JOIN users u ON u.id = p.author_id`

func scanPost(row interface{ Scan(...any) error }) (BlogPost, error) {
	var p BlogPost
	var role string
	err := row.Scan(&p.ID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImageURL, &p.AuthorID,
		&p.Author.ID, &p.Author.Name, &p.Author.Email, &role)
	p.Author.Role = Role(role)
	return p, err
}

// ListPosts returns every post with its author, in insertion order.
func (s *Store) ListPosts(ctx context.Context) ([]BlogPost, error) {
	rows, err := s.db.QueryContext(ctx, postSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// GetPost returns a single post with its author.
func (s *Store) GetPost(ctx context.Context, id int64) (BlogPost, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, postSelect+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return BlogPost{}, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return BlogPost{}, fmt.Errorf("get post %d: %w", id, err)
	}
	return p, nil
}

// CreatePost inserts p and sets its ID. A title already in use yields
// ErrDuplicateTitle.
func (s *Store) CreatePost(ctx context.Context, p *BlogPost) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO blog_posts (title, subtitle, date, body, img_url, author_id) VALUES (?, ?, ?, ?, ?, ?)`,
		p.Title, p.Subtitle, p.Date, p.Body, p.ImageURL, p.AuthorID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("insert post: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// UpdatePost overwrites the editable fields of the post with p.ID.
func (s *Store) UpdatePost(ctx context.Context, p BlogPost) error {
	res, err := s.db.ExecContext(ctx, `UPDATE blog_posts SET title = ?, subtitle = ?, body = ?, img_url = ?, author_id = ? WHERE id = ?`,
		p.Title, p.Subtitle, p.Body, p.ImageURL, p.AuthorID, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("update post %d: %w", p.ID, err)
	}
	return requireRow(res, "post", p.ID)
}

// DeletePost removes a post; its comments go with it.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return requireRow(res, "post", id)
}

func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

// CreateComment inserts c and sets its ID and CreatedAt.
func (s *Store) CreateComment(ctx context.Context, c *Comment) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `INSERT INTO comments (text, commenter_id, post_id, created_at) VALUES (?, ?, ?, ?)`,
		c.Text, c.CommenterID, c.PostID, now.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	c.CreatedAt = now
	return nil
}

// ListComments returns the comments on a post, oldest first, with commenters.
func (s *Store) ListComments(ctx context.Context, postID int64) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.id, c.text, c.commenter_id, c.post_id, c.created_at, u.id, u.name, u.email
FROM comments c
JOIN users u ON u.id = c.commenter_id
WHERE c.post_id = ?
ORDER BY c.id`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		var created string
		if err := rows.Scan(&c.ID, &c.Text, &c.CommenterID, &c.PostID, &created,
			&c.Commenter.ID, &c.Commenter.Name, &c.Commenter.Email); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, created)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// CountComments returns how many comments reference postID.
func (s *Store) CountComments(ctx context.Context, postID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, postID).Scan(&n)
	return n, err
}

// SaveImage records metadata for an uploaded image.
func (s *Store) SaveImage(ctx context.Context, img Image) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// ListImages returns every uploaded image, newest first.
func (s *Store) ListImages(ctx context.Context) ([]Image, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ImageExists reports whether filename is already recorded.
func (s *Store) ImageExists(ctx context.Context, filename string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE filename = ?`, filename).Scan(&n)
	return n > 0, err
}

// DeleteImage removes image metadata by filename.
func (s *Store) DeleteImage(ctx context.Context, filename string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE filename = ?`, filename)
	return err
}
