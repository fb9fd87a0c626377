package service

import (
	"context"
	"testing"
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/cache"
	"github.com/toni-krstic/pyjama-portal/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFeedCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
}

// feedCacheFixture wires a post repo stub whose feed reflects a mutable like
// counter, so tests can tell a cached page from a fresh database read.
type feedCacheFixture struct {
	feedCalls int
	numLikes  int
}

func (f *feedCacheFixture) postRepo() *postRepoStub {
	return &postRepoStub{
		feedFn: func(_ context.Context, _ *time.Time, _ int) ([]*models.Post, error) {
			f.feedCalls++
			return []*models.Post{{ID: "p1", AuthorID: "u1", NumLikes: f.numLikes}}, nil
		},
		toggleLikeFn: func(_ context.Context, _, _ string) (bool, error) {
			f.numLikes++
			return true, nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: "u1", NumLikes: f.numLikes}, nil
		},
	}
}

func TestPostService_ToggleLikeInvalidatesFeedCache(t *testing.T) {
	setupFeedCache(t)
	ctx := context.Background()

	fix := &feedCacheFixture{}
	svc := NewPostService(fix.postRepo())

	first, err := svc.ListFeed(ctx, FeedInput{Limit: defaultFeedLimit})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 0, first[0].NumLikes)
	assert.Equal(t, 1, fix.feedCalls)

	_, err = svc.ListFeed(ctx, FeedInput{Limit: defaultFeedLimit})
	require.NoError(t, err)
	assert.Equal(t, 1, fix.feedCalls, "second read must come from the cache")

	_, err = svc.ToggleLike(ctx, "u2", "p1")
	require.NoError(t, err)

	after, err := svc.ListFeed(ctx, FeedInput{Limit: defaultFeedLimit})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, 2, fix.feedCalls, "like must evict the cached page")
	assert.Equal(t, 1, after[0].NumLikes)
}

func TestCommentService_WritesInvalidateFeedCache(t *testing.T) {
	setupFeedCache(t)
	ctx := context.Background()

	fix := &feedCacheFixture{}
	postSvc := NewPostService(fix.postRepo())

	comment := &models.Comment{ID: "c1", AuthorID: "u2", OriginalPostID: "p1", Content: "hi"}
	commentSvc := NewCommentService(&commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = comment.ID
			return nil
		},
		getByIDFn: func(_ context.Context, _ string) (*models.Comment, error) {
			return comment, nil
		},
		deleteFn:     func(_ context.Context, _ string) error { return nil },
		toggleLikeFn: func(_ context.Context, _, _ string) (bool, error) { return true, nil },
	})

	_, err := postSvc.ListFeed(ctx, FeedInput{Limit: defaultFeedLimit})
	require.NoError(t, err)
	require.Equal(t, 1, fix.feedCalls)

	// Feed pages embed comment trees, so each comment write must evict the
	// cached page.
	_, err = commentSvc.CreateComment(ctx, CreateCommentInput{
		AuthorID: "u2", PostID: "p1", Content: "hi",
	})
	require.NoError(t, err)
	_, err = postSvc.ListFeed(ctx, FeedInput{Limit: defaultFeedLimit})
	require.NoError(t, err)
	assert.Equal(t, 2, fix.feedCalls, "comment create must evict the cached page")

	_, err = commentSvc.ToggleLike(ctx, "u1", "c1")
	require.NoError(t, err)
	_, err = postSvc.ListFeed(ctx, FeedInput{Limit: defaultFeedLimit})
	require.NoError(t, err)
	assert.Equal(t, 3, fix.feedCalls, "comment like must evict the cached page")

	err = commentSvc.DeleteComment(ctx, DeleteCommentInput{AuthorID: "u2", CommentID: "c1"})
	require.NoError(t, err)
	_, err = postSvc.ListFeed(ctx, FeedInput{Limit: defaultFeedLimit})
	require.NoError(t, err)
	assert.Equal(t, 4, fix.feedCalls, "comment delete must evict the cached page")
}
