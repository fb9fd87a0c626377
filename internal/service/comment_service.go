package service

import (
	"context"

	"github.com/toni-krstic/pyjama-portal/internal/cache"
	"github.com/toni-krstic/pyjama-portal/internal/models"
	"github.com/toni-krstic/pyjama-portal/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
}

type CreateCommentInput struct {
	AuthorID        string
	PostID          string
	ParentCommentID *string
	Content         string
}

type UpdateCommentInput struct {
	AuthorID  string
	CommentID string
	Content   string
}

type DeleteCommentInput struct {
	AuthorID  string
	CommentID string
}

func NewCommentService(commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		AuthorID:        in.AuthorID,
		OriginalPostID:  in.PostID,
		ParentCommentID: in.ParentCommentID,
		Content:         in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	// Feed pages embed the comment tree, so comment writes invalidate the
	// cached first page just like post writes do.
	cache.Invalidate(ctx, cache.FeedFirstPageKey())
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != in.AuthorID {
		return nil, models.NewPermissionError("You can only edit your own comments")
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.FeedFirstPageKey())
	return s.commentRepo.GetByID(ctx, in.CommentID)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != in.AuthorID {
		return models.NewPermissionError("You can only delete your own comments")
	}
	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.FeedFirstPageKey())
	return nil
}

// ToggleLike flips the caller's like and returns the refreshed comment.
func (s *CommentService) ToggleLike(ctx context.Context, userID, commentID string) (*models.Comment, error) {
	if _, err := s.commentRepo.ToggleLike(ctx, commentID, userID); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.FeedFirstPageKey())
	return s.commentRepo.GetByID(ctx, commentID)
}
