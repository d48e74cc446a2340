package inkpost

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test_blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateUser(t *testing.T, s *Store, name, email string) User {
	t.Helper()
	u := User{Name: name, Email: email, PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	return u
}

func mustCreatePost(t *testing.T, s *Store, title string, author User) BlogPost {
	t.Helper()
	p := BlogPost{
		Title:    title,
		Subtitle: title + " subtitle",
		Date:     "April 05, 2024",
		Body:     "<p>" + title + "</p>",
		ImageURL: "https://example.com/" + Slugify(title) + ".jpg",
		AuthorID: author.ID,
	}
	require.NoError(t, s.CreatePost(context.Background(), &p))
	return p
}

func TestCreateUserFirstIsAdmin(t *testing.T) {
	s := setupTestStore(t)

	first := mustCreateUser(t, s, "Ada", "ada@example.com")
	second := mustCreateUser(t, s, "Bob", "bob@example.com")

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, RoleAdmin, first.Role)
	assert.True(t, first.IsAdmin())
	assert.False(t, first.CreatedAt.IsZero())

	assert.Equal(t, RoleReader, second.Role)
	assert.False(t, second.IsAdmin())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := setupTestStore(t)
	mustCreateUser(t, s, "Ada", "ada@example.com")

	u := User{Name: "Imposter", Email: "ADA@example.com", PasswordHash: "y"}
	err := s.CreateUser(context.Background(), &u)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserLookups(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ada := mustCreateUser(t, s, "Ada", "ada@example.com")

	got, err := s.UserByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	got, err = s.UserByEmail(ctx, "Ada@Example.com")
	require.NoError(t, err)
	assert.Equal(t, ada.ID, got.ID)

	_, err = s.UserByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	ada := mustCreateUser(t, s, "Ada", "ada@example.com")
	p := mustCreatePost(t, s, "First Post", ada)

	got, err := s.GetPost(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "First Post", got.Title)
	assert.Equal(t, "First Post subtitle", got.Subtitle)
	assert.Equal(t, "April 05, 2024", got.Date)
	assert.Equal(t, "Ada", got.Author.Name)
	assert.Equal(t, RoleAdmin, got.Author.Role)
	assert.Equal(t, "/post/1", got.Link())
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetPost(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreCreatePostDuplicateTitle(t *testing.T) {
	s := setupTestStore(t)
	ada := mustCreateUser(t, s, "Ada", "ada@example.com")
	mustCreatePost(t, s, "Same", ada)

	dup := BlogPost{Title: "Same", Subtitle: "s", Date: "d", Body: "b", ImageURL: "u", AuthorID: ada.ID}
	err := s.CreatePost(context.Background(), &dup)
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	posts, err := s.ListPosts(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestListPostsInInsertionOrder(t *testing.T) {
	s := setupTestStore(t)
	ada := mustCreateUser(t, s, "Ada", "ada@example.com")
	for _, title := range []string{"One", "Two", "Three"} {
		mustCreatePost(t, s, title, ada)
	}

	posts, err := s.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "One", posts[0].Title)
	assert.Equal(t, "Three", posts[2].Title)
	assert.Equal(t, "Ada", posts[1].Author.Name)
}

func TestUpdatePost(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ada := mustCreateUser(t, s, "Ada", "ada@example.com")
	bob := mustCreateUser(t, s, "Bob", "bob@example.com")
	p := mustCreatePost(t, s, "Draft", ada)
	other := mustCreatePost(t, s, "Other", ada)

	p.Title = "Final"
	p.AuthorID = bob.ID
	require.NoError(t, s.UpdatePost(ctx, p))

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, "Bob", got.Author.Name)
	assert.Equal(t, "April 05, 2024", got.Date, "editing keeps the original date")

	// Saving a post under its own title is not a conflict.
	require.NoError(t, s.UpdatePost(ctx, got))

	other.Title = "Final"
	assert.ErrorIs(t, s.UpdatePost(ctx, other), ErrDuplicateTitle)

	assert.ErrorIs(t, s.UpdatePost(ctx, BlogPost{ID: 99, Title: "x"}), ErrNotFound)
}

func TestDeletePostCascadesComments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ada := mustCreateUser(t, s, "Ada", "ada@example.com")
	bob := mustCreateUser(t, s, "Bob", "bob@example.com")
	p := mustCreatePost(t, s, "Doomed", ada)
	keep := mustCreatePost(t, s, "Kept", ada)

	for _, post := range []BlogPost{p, keep} {
		c := Comment{Text: "hi", CommenterID: bob.ID, PostID: post.ID}
		require.NoError(t, s.CreateComment(ctx, &c))
	}

	require.NoError(t, s.DeletePost(ctx, p.ID))

	_, err := s.GetPost(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	n, err := s.CountComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	n, err = s.CountComments(ctx, keep.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, s.DeletePost(ctx, p.ID), ErrNotFound)
}

func TestCommentsListedWithCommenter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ada := mustCreateUser(t, s, "Ada", "ada@example.com")
	bob := mustCreateUser(t, s, "Bob", "bob@example.com")
	p := mustCreatePost(t, s, "Talk", ada)

	first := Comment{Text: "first", CommenterID: bob.ID, PostID: p.ID}
	require.NoError(t, s.CreateComment(ctx, &first))
	second := Comment{Text: "second", CommenterID: ada.ID, PostID: p.ID}
	require.NoError(t, s.CreateComment(ctx, &second))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	comments, err := s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "Bob", comments[0].Commenter.Name)
	assert.Equal(t, "bob@example.com", comments[0].Commenter.Email)
	assert.Equal(t, "Ada", comments[1].Commenter.Name)
}

func TestCreateCommentUnknownPost(t *testing.T) {
	s := setupTestStore(t)
	bob := mustCreateUser(t, s, "Bob", "bob@example.com")

	c := Comment{Text: "orphan", CommenterID: bob.ID, PostID: 7}
	assert.Error(t, s.CreateComment(context.Background(), &c), "foreign keys must be enforced")
}

func TestImages(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	img := Image{Filename: "cat.jpg", OriginalName: "Cat.png", Width: 800, Height: 600, Size: 1234, UploadedAt: "2024-04-05T10:00:00Z"}
	require.NoError(t, s.SaveImage(ctx, img))

	ok, err := s.ImageExists(ctx, "cat.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	images, err := s.ListImages(ctx)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, img, images[0])
	assert.Equal(t, "/public/uploads/cat.jpg", images[0].URL())

	require.NoError(t, s.DeleteImage(ctx, "cat.jpg"))
	ok, err = s.ImageExists(ctx, "cat.jpg")
	require.NoError(t, err)
	assert.False(t, ok)
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Store{db: db}, mock
}

func TestListPostsQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT p.id").WillReturnError(errors.New("disk I/O error"))

	_, err := s.ListPosts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list posts")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserUniqueMessageFallback(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("UNIQUE constraint failed: users.email"))

	u := User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, s.CreateUser(context.Background(), &u), ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPostScanErrorIsNotNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT p.id").WithArgs(int64(3)).WillReturnError(errors.New("database is locked"))

	_, err := s.GetPost(context.Background(), 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
