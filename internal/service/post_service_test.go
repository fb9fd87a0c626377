package service

import (
	"context"
	"strings"
	"testing"

	"github.com/toni-krstic/pyjama-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestPostService_CreatePostValidation(t *testing.T) {
	t.Parallel()
	svc := NewPostService(&postRepoStub{})
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: "u1", Content: ""})
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))

	_, err = svc.CreatePost(ctx, CreatePostInput{AuthorID: "u1", Content: "   "})
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))

	_, err = svc.CreatePost(ctx, CreatePostInput{
		AuthorID: "u1",
		Content:  strings.Repeat("a", models.MaxContentLen+1),
	})
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()
	var created *models.Post
	repo := &postRepoStub{
		createFn: func(_ context.Context, post *models.Post) error {
			post.ID = "p1"
			created = post
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) {
			return created, nil
		},
	}
	svc := NewPostService(repo)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: "u1",
		Content:  "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", post.AuthorID)
	assert.Equal(t, "hello", post.Content)
}

func TestPostService_UpdatePostOwnership(t *testing.T) {
	t.Parallel()
	repo := &postRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: "owner", Content: "original"}, nil
		},
	}
	svc := NewPostService(repo)

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		AuthorID: "intruder",
		PostID:   "p1",
		Content:  "hijacked",
	})
	assert.Equal(t, "FORBIDDEN", appErrCode(t, err))
}

func TestPostService_DeletePostOwnership(t *testing.T) {
	t.Parallel()
	repo := &postRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: "owner"}, nil
		},
	}
	svc := NewPostService(repo)

	err := svc.DeletePost(context.Background(), DeletePostInput{
		AuthorID: "intruder",
		PostID:   "p1",
	})
	assert.Equal(t, "FORBIDDEN", appErrCode(t, err))
}

func TestPostService_DeletePostByOwner(t *testing.T) {
	t.Parallel()
	deleted := false
	repo := &postRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: "owner"}, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := NewPostService(repo)

	require.NoError(t, svc.DeletePost(context.Background(), DeletePostInput{
		AuthorID: "owner",
		PostID:   "p1",
	}))
	assert.True(t, deleted)
}

func TestPostService_SharePostTooLong(t *testing.T) {
	t.Parallel()
	svc := NewPostService(&postRepoStub{})

	_, err := svc.SharePost(context.Background(), SharePostInput{
		AuthorID: "u1",
		PostID:   "p1",
		Content:  strings.Repeat("b", models.MaxContentLen+1),
	})
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
}

func TestPostService_SharePostEmptyContentAllowed(t *testing.T) {
	t.Parallel()
	repo := &postRepoStub{
		shareFn: func(_ context.Context, repost *models.Post) error {
			repost.ID = "r1"
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.Post, error) {
			return &models.Post{ID: id, IsRepost: true}, nil
		},
	}
	svc := NewPostService(repo)

	repost, err := svc.SharePost(context.Background(), SharePostInput{
		AuthorID: "u1",
		PostID:   "p1",
	})
	require.NoError(t, err)
	assert.True(t, repost.IsRepost)
}
