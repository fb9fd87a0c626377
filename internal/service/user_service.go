package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/models"
	"github.com/toni-krstic/pyjama-portal/internal/repository"
	"github.com/toni-krstic/pyjama-portal/internal/validation"
)

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

type UpdateProfileInput struct {
	UserID       string
	Username     string
	FirstName    string
	LastName     string
	Bio          string
	ProfileImage string
}

// SyncUserInput mirrors the identity provider's view of a user as delivered
// by its webhook events.
type SyncUserInput struct {
	ID           string
	Username     string
	FirstName    string
	LastName     string
	ProfileImage string
}

type SearchUsersInput struct {
	Query  string
	Before *time.Time
	Limit  int
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

func validateUsername(username string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

func (s *UserService) GetProfileByID(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile edits the caller's own profile and marks onboarding as
// complete on the first successful edit.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" && in.Username != user.Username {
		if err := validateUsername(in.Username); err != nil {
			return nil, err
		}
		user.Username = in.Username
	}
	if in.FirstName != "" {
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		user.LastName = in.LastName
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}
	if in.ProfileImage != "" {
		user.ProfileImage = in.ProfileImage
	}
	user.Onboarding = false

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}

func (s *UserService) SearchUsers(ctx context.Context, in SearchUsersInput) ([]*models.User, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, query, in.Before, in.Limit)
}

// ToggleFollow flips the caller's follow edge to another user and reports
// whether the caller now follows them.
func (s *UserService) ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == followingID {
		return false, models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		return false, err
	}
	return s.followRepo.Toggle(ctx, followerID, followingID)
}

func (s *UserService) ListFollowers(ctx context.Context, userID string) ([]*models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, userID)
}

func (s *UserService) ListFollowing(ctx context.Context, userID string) ([]*models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, userID)
}

func (s *UserService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followingID)
}

// SyncUser upserts a user record from an identity webhook event. New users
// get a placeholder username derived from their ID when the provider sends
// none; they pick a real one during onboarding.
func (s *UserService) SyncUser(ctx context.Context, in SyncUserInput) (*models.User, error) {
	if in.ID == "" {
		return nil, models.NewValidationError("User ID is required")
	}

	existing, err := s.userRepo.GetByID(ctx, in.ID)
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
			return nil, err
		}

		username := in.Username
		if username == "" {
			username = "user_" + in.ID
		}
		user := &models.User{
			ID:           in.ID,
			Username:     username,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			ProfileImage: in.ProfileImage,
			Onboarding:   true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return s.userRepo.GetByID(ctx, in.ID)
	}

	if in.Username != "" {
		existing.Username = in.Username
	}
	if in.FirstName != "" {
		existing.FirstName = in.FirstName
	}
	if in.LastName != "" {
		existing.LastName = in.LastName
	}
	if in.ProfileImage != "" {
		existing.ProfileImage = in.ProfileImage
	}
	if err := s.userRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.ID)
}

// RemoveUser deletes a user and all their content after the identity
// provider reports the account gone.
func (s *UserService) RemoveUser(ctx context.Context, id string) error {
	if id == "" {
		return models.NewValidationError("User ID is required")
	}
	return s.userRepo.Delete(ctx, id)
}
