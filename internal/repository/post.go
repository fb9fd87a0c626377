package repository

import (
	"context"
	"errors"
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/middleware"
	"github.com/toni-krstic/pyjama-portal/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts, reposts and
// post likes.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetThread(ctx context.Context, id string) (*models.Post, error)
	Feed(ctx context.Context, before *time.Time, limit int) ([]*models.Post, error)
	FeedByAuthor(ctx context.Context, authorID string, before *time.Time, limit int) ([]*models.Post, error)
	FeedByFollowing(ctx context.Context, userID string, before *time.Time, limit int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, authorID string) (bool, error)
	Share(ctx context.Context, repost *models.Post) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// feedPreloads attaches the author, likes and the two comment levels the
// feed renders: top level comments plus their direct replies.
func feedPreloads(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Author").
		Preload("Likes").
		Preload("Comments", "parent_comment_id IS NULL", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("Comments.Author").
		Preload("Comments.Likes").
		Preload("Comments.ChildComments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments.ChildComments.Author").
		Preload("Comments.ChildComments.Likes")
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := feedPreloads(r.db.WithContext(ctx)).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// GetThread loads a post together with its full comment tree. Comments are
// fetched in one query and assembled in memory so arbitrarily deep threads
// cost a constant number of round trips.
func (r *postRepository) GetThread(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}

	var comments []*models.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		Where("original_post_id = ?", id).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	byParent := make(map[string][]models.Comment, len(comments))
	for _, c := range comments {
		if c.ParentCommentID != nil {
			byParent[*c.ParentCommentID] = append(byParent[*c.ParentCommentID], *c)
		}
	}
	var attach func(c *models.Comment)
	attach = func(c *models.Comment) {
		c.ChildComments = byParent[c.ID]
		for i := range c.ChildComments {
			attach(&c.ChildComments[i])
		}
	}
	for _, c := range comments {
		if c.ParentCommentID == nil {
			attach(c)
			post.Comments = append(post.Comments, *c)
		}
	}
	return &post, nil
}

func (r *postRepository) Feed(ctx context.Context, before *time.Time, limit int) ([]*models.Post, error) {
	q := feedPreloads(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(limit)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	var posts []*models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) FeedByAuthor(ctx context.Context, authorID string, before *time.Time, limit int) ([]*models.Post, error) {
	q := feedPreloads(r.db.WithContext(ctx)).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	var posts []*models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) FeedByFollowing(ctx context.Context, userID string, before *time.Time, limit int) ([]*models.Post, error) {
	sub := r.db.Model(&models.Follower{}).
		Select("following_id").
		Where("follower_id = ?", userID)
	q := feedPreloads(r.db.WithContext(ctx)).
		Where("author_id IN (?)", sub).
		Order("created_at DESC").
		Limit(limit)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	var posts []*models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"content":    post.Content,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return deletePostCascade(tx, id)
	})
}

// deletePostCascade removes a post and all rows that hang off it: likes on
// the post and on its comments, the comments themselves, notifications
// mentioning the post, and recursively any reposts of it.
func deletePostCascade(tx *gorm.DB, id string) error {
	var repostIDs []string
	if err := tx.Model(&models.Post{}).
		Where("original_post_id = ? AND is_repost = ?", id, true).
		Pluck("id", &repostIDs).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, repostID := range repostIDs {
		if err := deletePostCascade(tx, repostID); err != nil {
			return err
		}
	}

	commentIDs := tx.Model(&models.Comment{}).Select("id").Where("original_post_id = ?", id)
	steps := []*gorm.DB{
		tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}),
		tx.Where("original_post_id = ?", id).Delete(&models.Comment{}),
		tx.Where("post_id = ?", id).Delete(&models.PostLike{}),
		tx.Where("post_id = ?", id).Delete(&models.Notification{}),
		tx.Where("id = ?", id).Delete(&models.Post{}),
	}
	for _, step := range steps {
		if step.Error != nil {
			return models.NewInternalError(step.Error)
		}
	}
	return nil
}

// ToggleLike flips the caller's like on a post. The insert relies on the
// composite primary key so two racing requests cannot both count: whichever
// insert loses the conflict takes the removal branch instead. The counter
// and the notification only move when the like row actually changed.
func (r *postRepository) ToggleLike(ctx context.Context, postID, authorID string) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "author_id").First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewInternalError(err)
		}

		insert := tx.Exec(
			"INSERT INTO post_likes (post_id, author_id, created_at) VALUES (?, ?, ?) ON CONFLICT (post_id, author_id) DO NOTHING",
			postID, authorID, time.Now(),
		)
		if insert.Error != nil {
			return models.NewInternalError(insert.Error)
		}

		if insert.RowsAffected == 1 {
			liked = true
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("num_likes", gorm.Expr("num_likes + 1")).Error; err != nil {
				return models.NewInternalError(err)
			}
			notification := models.Notification{
				UserID:   post.AuthorID,
				AuthorID: authorID,
				PostID:   &postID,
				Content:  models.NotificationLikedPost,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return models.NewInternalError(err)
			}
			middleware.NotificationsWritten.WithLabelValues("post_like").Inc()
			return nil
		}

		liked = false
		if err := tx.Where("post_id = ? AND author_id = ?", postID, authorID).
			Delete(&models.PostLike{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Post{}).Where("id = ? AND num_likes > 0", postID).
			UpdateColumn("num_likes", gorm.Expr("num_likes - 1")).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("user_id = ? AND author_id = ? AND post_id = ? AND content = ?",
			post.AuthorID, authorID, postID, models.NotificationLikedPost).
			Delete(&models.Notification{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	return liked, err
}

// Share creates a repost and bumps the original's share counter in the
// same transaction, notifying the original author.
func (r *postRepository) Share(ctx context.Context, repost *models.Post) error {
	if repost.OriginalPostID == nil {
		return models.NewValidationError("Repost must reference an original post")
	}
	originalID := *repost.OriginalPostID
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var original models.Post
		if err := tx.Select("id", "author_id").First(&original, "id = ?", originalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", originalID)
			}
			return models.NewInternalError(err)
		}

		repost.IsRepost = true
		if err := tx.Create(repost).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", originalID).
			UpdateColumn("num_shares", gorm.Expr("num_shares + 1")).Error; err != nil {
			return models.NewInternalError(err)
		}
		notification := models.Notification{
			UserID:   original.AuthorID,
			AuthorID: repost.AuthorID,
			PostID:   &originalID,
			Content:  models.NotificationSharedPost,
		}
		if err := tx.Create(&notification).Error; err != nil {
			return models.NewInternalError(err)
		}
		middleware.NotificationsWritten.WithLabelValues("post_share").Inc()
		return nil
	})
}
