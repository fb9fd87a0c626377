package repository

import (
	"context"

	"github.com/toni-krstic/pyjama-portal/internal/middleware"
	"github.com/toni-krstic/pyjama-portal/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for the follow graph.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]*models.User, error)
	ListFollowing(ctx context.Context, userID string) ([]*models.User, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Toggle flips the follow edge between two users. The composite primary
// key makes the insert race free: a concurrent duplicate follow resolves
// to one edge and one unfollow.
func (r *followRepository) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Exec(
			"INSERT INTO followers (follower_id, following_id) VALUES (?, ?) ON CONFLICT (follower_id, following_id) DO NOTHING",
			followerID, followingID,
		)
		if insert.Error != nil {
			return models.NewInternalError(insert.Error)
		}

		if insert.RowsAffected == 1 {
			following = true
			notification := models.Notification{
				UserID:   followingID,
				AuthorID: followerID,
				Content:  models.NotificationFollowed,
			}
			if err := tx.Create(&notification).Error; err != nil {
				return models.NewInternalError(err)
			}
			middleware.NotificationsWritten.WithLabelValues("follow").Inc()
			return nil
		}

		following = false
		if err := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).
			Delete(&models.Follower{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("user_id = ? AND author_id = ? AND content = ?",
			followingID, followerID, models.NotificationFollowed).
			Delete(&models.Notification{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	return following, err
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string) ([]*models.User, error) {
	var users []*models.User
	sub := r.db.Model(&models.Follower{}).
		Select("follower_id").
		Where("following_id = ?", userID)
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID string) ([]*models.User, error) {
	var users []*models.User
	sub := r.db.Model(&models.Follower{}).
		Select("following_id").
		Where("follower_id = ?", userID)
	if err := r.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("username ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follower{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
