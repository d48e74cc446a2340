package inkpost

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostCacheServesStaleUntilInvalidated(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ada := mustCreateUser(t, s, "Ada", "ada@example.com")
	mustCreatePost(t, s, "One", ada)

	cache := NewPostCache(s, time.Hour)
	posts, err := cache.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	mustCreatePost(t, s, "Two", ada)
	posts, err = cache.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1, "still cached")

	cache.Invalidate()
	posts, err = cache.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
}

func TestPostCacheExpires(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ada := mustCreateUser(t, s, "Ada", "ada@example.com")

	cache := NewPostCache(s, 20*time.Millisecond)
	posts, err := cache.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	mustCreatePost(t, s, "Late", ada)
	time.Sleep(40 * time.Millisecond)

	posts, err = cache.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPostCacheDoesNotCacheErrors(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT p.id").WillReturnError(assert.AnError)

	cache := NewPostCache(s, time.Hour)
	_, err := cache.ListPosts(context.Background())
	require.Error(t, err)
	assert.False(t, cache.loaded)
}
