// Package service contains the application business logic, sitting between
// the HTTP handlers and the repositories.
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/toni-krstic/pyjama-portal/internal/cache"
	"github.com/toni-krstic/pyjama-portal/internal/models"
	"github.com/toni-krstic/pyjama-portal/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	AuthorID string
	Content  string
}

type UpdatePostInput struct {
	AuthorID string
	PostID   string
	Content  string
}

type DeletePostInput struct {
	AuthorID string
	PostID   string
}

type SharePostInput struct {
	AuthorID  string
	PostID    string
	Content   string
	CommentID *string
}

// FeedInput carries keyset pagination parameters: Before is the created_at
// of the last item the caller has seen, nil for the first page.
type FeedInput struct {
	Before *time.Time
	Limit  int
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxContentLen {
		return models.NewValidationError("Content too long (max 256 characters)")
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	post := &models.Post{
		AuthorID: in.AuthorID,
		Content:  in.Content,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.FeedFirstPageKey())
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// GetThread returns the post with its full nested comment tree.
func (s *PostService) GetThread(ctx context.Context, id string) (*models.Post, error) {
	return s.postRepo.GetThread(ctx, id)
}

// defaultFeedLimit is the page size clients get when they don't ask for one.
const defaultFeedLimit = 5

func (s *PostService) ListFeed(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	// The uncursored default-size first page is by far the hottest read, so
	// it goes through the cache. Everything else hits the database directly;
	// caching per (cursor, limit) would fragment the key space for little
	// gain. Every content write, including likes and comments, invalidates
	// the key so the cached page never serves stale counters.
	if in.Before == nil && in.Limit == defaultFeedLimit {
		var posts []*models.Post
		err := cache.Aside(ctx, cache.FeedFirstPageKey(), &posts, cache.FeedTTL, func() error {
			var fetchErr error
			posts, fetchErr = s.postRepo.Feed(ctx, nil, in.Limit)
			return fetchErr
		})
		return posts, err
	}
	return s.postRepo.Feed(ctx, in.Before, in.Limit)
}

func (s *PostService) ListUserPosts(ctx context.Context, authorID string, in FeedInput) ([]*models.Post, error) {
	return s.postRepo.FeedByAuthor(ctx, authorID, in.Before, in.Limit)
}

func (s *PostService) ListFollowingFeed(ctx context.Context, userID string, in FeedInput) ([]*models.Post, error) {
	return s.postRepo.FeedByFollowing(ctx, userID, in.Before, in.Limit)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.AuthorID {
		return nil, models.NewPermissionError("You can only edit your own posts")
	}

	post.Content = in.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.FeedFirstPageKey())
	return s.postRepo.GetByID(ctx, in.PostID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.AuthorID != in.AuthorID {
		return models.NewPermissionError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.FeedFirstPageKey())
	return nil
}

// ToggleLike flips the caller's like and returns the refreshed post.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (*models.Post, error) {
	if _, err := s.postRepo.ToggleLike(ctx, postID, userID); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.FeedFirstPageKey())
	return s.postRepo.GetByID(ctx, postID)
}

// SharePost creates a repost of an existing post, optionally with the
// sharer's own commentary.
func (s *PostService) SharePost(ctx context.Context, in SharePostInput) (*models.Post, error) {
	if utf8.RuneCountInString(in.Content) > models.MaxContentLen {
		return nil, models.NewValidationError("Content too long (max 256 characters)")
	}
	postID := in.PostID
	repost := &models.Post{
		AuthorID:       in.AuthorID,
		Content:        in.Content,
		OriginalPostID: &postID,
		CommentID:      in.CommentID,
		IsRepost:       true,
	}
	if err := s.postRepo.Share(ctx, repost); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.FeedFirstPageKey())
	return s.postRepo.GetByID(ctx, repost.ID)
}
