package repository

import (
	"context"
	"errors"
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/middleware"
	"github.com/toni-krstic/pyjama-portal/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines persistence operations for comments and
// comment likes.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, commentID, authorID string) (bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment, bumps the parent's comment counter and
// records the notification in one transaction. Replies to replies are
// flattened onto the top level reply via OriginalCommentID so the render
// depth stays bounded at two.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "author_id").First(&post, "id = ?", comment.OriginalPostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", comment.OriginalPostID)
			}
			return models.NewInternalError(err)
		}

		if comment.ParentCommentID == nil {
			if err := tx.Create(comment).Error; err != nil {
				return models.NewInternalError(err)
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
				UpdateColumn("num_comments", gorm.Expr("num_comments + 1")).Error; err != nil {
				return models.NewInternalError(err)
			}
			// Stamp the new comment's ID so deleting the comment later
			// also removes this notification.
			commentID := comment.ID
			notification := models.Notification{
				UserID:    post.AuthorID,
				AuthorID:  comment.AuthorID,
				PostID:    &post.ID,
				CommentID: &commentID,
				Content:   models.NotificationCommentedPost,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return models.NewInternalError(err)
			}
			middleware.NotificationsWritten.WithLabelValues("post_comment").Inc()
			return nil
		}

		var parent models.Comment
		if err := tx.First(&parent, "id = ?", *comment.ParentCommentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", *comment.ParentCommentID)
			}
			return models.NewInternalError(err)
		}
		if parent.OriginalPostID != comment.OriginalPostID {
			return models.NewValidationError("Parent comment belongs to a different post")
		}

		// Deep replies attach to the thread of the top level reply.
		if parent.OriginalCommentID != nil {
			comment.OriginalCommentID = parent.OriginalCommentID
		} else {
			parentID := parent.ID
			comment.OriginalCommentID = &parentID
		}

		if err := tx.Create(comment).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Comment{}).Where("id = ?", parent.ID).
			UpdateColumn("num_comments", gorm.Expr("num_comments + 1")).Error; err != nil {
			return models.NewInternalError(err)
		}
		replyID := comment.ID
		notification := models.Notification{
			UserID:    parent.AuthorID,
			AuthorID:  comment.AuthorID,
			PostID:    &post.ID,
			CommentID: &replyID,
			Content:   models.NotificationCommentedComment,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return models.NewInternalError(err)
		}
		middleware.NotificationsWritten.WithLabelValues("comment_reply").Inc()
		return nil
	})
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	result := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]any{
			"content":    comment.Content,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	return nil
}

// Delete removes a comment together with every reply in its thread and
// their likes, then walks the counter back on whichever parent held it.
func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", id)
			}
			return models.NewInternalError(err)
		}

		ids := []string{id}
		var descendantIDs []string
		if err := tx.Model(&models.Comment{}).
			Where("original_comment_id = ? OR parent_comment_id = ?", id, id).
			Pluck("id", &descendantIDs).Error; err != nil {
			return models.NewInternalError(err)
		}
		ids = append(ids, descendantIDs...)

		steps := []*gorm.DB{
			tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}),
			tx.Where("comment_id IN ?", ids).Delete(&models.Notification{}),
			tx.Where("id IN ?", ids).Delete(&models.Comment{}),
		}
		for _, step := range steps {
			if step.Error != nil {
				return models.NewInternalError(step.Error)
			}
		}

		if comment.ParentCommentID == nil {
			if err := tx.Model(&models.Post{}).
				Where("id = ? AND num_comments > 0", comment.OriginalPostID).
				UpdateColumn("num_comments", gorm.Expr("num_comments - 1")).Error; err != nil {
				return models.NewInternalError(err)
			}
		} else {
			if err := tx.Model(&models.Comment{}).
				Where("id = ? AND num_comments > 0", *comment.ParentCommentID).
				UpdateColumn("num_comments", gorm.Expr("num_comments - 1")).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
}

// ToggleLike flips the caller's like on a comment, mirroring the post
// like toggle: the conflict free insert decides the branch.
func (r *commentRepository) ToggleLike(ctx context.Context, commentID, authorID string) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id", "author_id", "original_post_id").
			First(&comment, "id = ?", commentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", commentID)
			}
			return models.NewInternalError(err)
		}

		insert := tx.Exec(
			"INSERT INTO comment_likes (comment_id, author_id, created_at) VALUES (?, ?, ?) ON CONFLICT (comment_id, author_id) DO NOTHING",
			commentID, authorID, time.Now(),
		)
		if insert.Error != nil {
			return models.NewInternalError(insert.Error)
		}

		if insert.RowsAffected == 1 {
			liked = true
			if err := tx.Model(&models.Comment{}).Where("id = ?", commentID).
				UpdateColumn("num_likes", gorm.Expr("num_likes + 1")).Error; err != nil {
				return models.NewInternalError(err)
			}
			notification := models.Notification{
				UserID:    comment.AuthorID,
				AuthorID:  authorID,
				PostID:    &comment.OriginalPostID,
				CommentID: &commentID,
				Content:   models.NotificationLikedComment,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return models.NewInternalError(err)
			}
			middleware.NotificationsWritten.WithLabelValues("comment_like").Inc()
			return nil
		}

		liked = false
		if err := tx.Where("comment_id = ? AND author_id = ?", commentID, authorID).
			Delete(&models.CommentLike{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Comment{}).Where("id = ? AND num_likes > 0", commentID).
			UpdateColumn("num_likes", gorm.Expr("num_likes - 1")).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("user_id = ? AND author_id = ? AND comment_id = ? AND content = ?",
			comment.AuthorID, authorID, commentID, models.NotificationLikedComment).
			Delete(&models.Notification{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	return liked, err
}
