package service

import (
	"context"
	"testing"

	"github.com/toni-krstic/pyjama-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_ToggleFollowSelf(t *testing.T) {
	t.Parallel()
	svc := NewUserService(&userRepoStub{}, &followRepoStub{})

	_, err := svc.ToggleFollow(context.Background(), "u1", "u1")
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
}

func TestUserService_ToggleFollowMissingTarget(t *testing.T) {
	t.Parallel()
	userRepo := &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		},
	}
	svc := NewUserService(userRepo, &followRepoStub{})

	_, err := svc.ToggleFollow(context.Background(), "u1", "ghost")
	assert.Equal(t, "NOT_FOUND", appErrCode(t, err))
}

func TestUserService_ToggleFollow(t *testing.T) {
	t.Parallel()
	userRepo := &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
	}
	followRepo := &followRepoStub{
		toggleFn: func(_ context.Context, followerID, followingID string) (bool, error) {
			return true, nil
		},
	}
	svc := NewUserService(userRepo, followRepo)

	following, err := svc.ToggleFollow(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.True(t, following)
}

func TestUserService_SyncUserCreates(t *testing.T) {
	t.Parallel()
	store := map[string]*models.User{}
	userRepo := &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			if u, ok := store[id]; ok {
				return u, nil
			}
			return nil, models.NewNotFoundError("User", id)
		},
		createFn: func(_ context.Context, user *models.User) error {
			store[user.ID] = user
			return nil
		},
	}
	svc := NewUserService(userRepo, &followRepoStub{})

	user, err := svc.SyncUser(context.Background(), SyncUserInput{
		ID:        "user_ext1",
		FirstName: "Alice",
	})
	require.NoError(t, err)
	// No username from the provider yields a placeholder until onboarding.
	assert.Equal(t, "user_user_ext1", user.Username)
	assert.True(t, user.Onboarding)
}

func TestUserService_SyncUserUpdates(t *testing.T) {
	t.Parallel()
	existing := &models.User{ID: "user_ext1", Username: "alice", FirstName: "Alice"}
	userRepo := &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return existing, nil
		},
		updateFn: func(_ context.Context, user *models.User) error {
			existing = user
			return nil
		},
	}
	svc := NewUserService(userRepo, &followRepoStub{})

	user, err := svc.SyncUser(context.Background(), SyncUserInput{
		ID:        "user_ext1",
		FirstName: "Alicia",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.FirstName)
	assert.Equal(t, "alice", user.Username, "unset fields keep their value")
}

func TestUserService_SyncUserRequiresID(t *testing.T) {
	t.Parallel()
	svc := NewUserService(&userRepoStub{}, &followRepoStub{})

	_, err := svc.SyncUser(context.Background(), SyncUserInput{})
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))

	err = svc.RemoveUser(context.Background(), "")
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
}

func TestUserService_UpdateProfileUsernameValidation(t *testing.T) {
	t.Parallel()
	userRepo := &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: "old", Onboarding: true}, nil
		},
	}
	svc := NewUserService(userRepo, &followRepoStub{})
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: "u1", Username: "ab"})
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))

	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: "u1", Username: "has space"})
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))

	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: "u1", Username: "admin"})
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
}

func TestUserService_UpdateProfileFinishesOnboarding(t *testing.T) {
	t.Parallel()
	stored := &models.User{ID: "u1", Username: "old", Onboarding: true}
	userRepo := &userRepoStub{
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return stored, nil
		},
		updateFn: func(_ context.Context, user *models.User) error {
			stored = user
			return nil
		},
	}
	svc := NewUserService(userRepo, &followRepoStub{})

	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:    "u1",
		Username:  "fresh_name",
		FirstName: "Alice",
		Bio:       "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh_name", user.Username)
	assert.False(t, user.Onboarding)
}

func TestUserService_SearchRequiresQuery(t *testing.T) {
	t.Parallel()
	svc := NewUserService(&userRepoStub{}, &followRepoStub{})

	_, err := svc.SearchUsers(context.Background(), SearchUsersInput{Query: "  "})
	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
}
