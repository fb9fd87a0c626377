package repository

import (
	"context"
	"testing"
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		ID:        "user_1",
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Archer",
		Bio:       "hello",
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user_1", byName.ID)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{ID: "user_1", Username: "alice"}))
	err := repo.Create(ctx, &models.User{ID: "user_2", Username: "alice"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestUserRepository_GetNotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestUserRepository_SearchCaseInsensitive(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		ID: "user_1", Username: "AliceWonder", FirstName: "Alice", LastName: "Archer",
	}))
	require.NoError(t, repo.Create(ctx, &models.User{
		ID: "user_2", Username: "bob", FirstName: "Bob", LastName: "Malice",
	}))
	require.NoError(t, repo.Create(ctx, &models.User{
		ID: "user_3", Username: "carol", FirstName: "Carol", LastName: "Jones",
	}))

	// Matches username and last name regardless of case.
	results, err := repo.Search(ctx, "alice", nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	results, err = repo.Search(ctx, "JONES", nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "carol", results[0].Username)
}

func TestUserRepository_SearchPagination(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		user := &models.User{
			ID:        "user_" + string(rune('a'+i)),
			Username:  "searcher_" + string(rune('a'+i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(user).Error)
	}

	first, err := repo.Search(ctx, "searcher", nil, 5)
	require.NoError(t, err)
	require.Len(t, first, 5)

	cursor := first[len(first)-1].CreatedAt
	second, err := repo.Search(ctx, "searcher", &cursor, 5)
	require.NoError(t, err)
	require.Len(t, second, 2)
	for _, u := range second {
		assert.True(t, u.CreatedAt.Before(cursor))
	}
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	postRepo := NewPostRepository(db)
	commentRepo := NewCommentRepository(db)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "user_alice", "alice")
	bob := createTestUser(t, db, "user_bob", "bob")

	alicePost := createTestPost(t, db, alice.ID, "alice post")
	bobPost := createTestPost(t, db, bob.ID, "bob post")

	// Alice interacts with bob's content and vice versa.
	comment := &models.Comment{AuthorID: alice.ID, OriginalPostID: bobPost.ID, Content: "hi"}
	require.NoError(t, commentRepo.Create(ctx, comment))
	_, err := postRepo.ToggleLike(ctx, bobPost.ID, alice.ID)
	require.NoError(t, err)
	_, err = postRepo.ToggleLike(ctx, alicePost.ID, bob.ID)
	require.NoError(t, err)
	_, err = followRepo.Toggle(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = followRepo.Toggle(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, userRepo.Delete(ctx, alice.ID))

	_, err = userRepo.GetByID(ctx, alice.ID)
	require.Error(t, err)

	// Everything alice owned or touched is gone; bob's own content remains.
	var posts, comments, likes, edges, notifications int64
	db.Model(&models.Post{}).Count(&posts)
	db.Model(&models.Comment{}).Count(&comments)
	db.Model(&models.PostLike{}).Count(&likes)
	db.Model(&models.Follower{}).Count(&edges)
	db.Model(&models.Notification{}).
		Where("user_id = ? OR author_id = ?", alice.ID, alice.ID).Count(&notifications)

	assert.Equal(t, int64(1), posts)
	assert.Equal(t, int64(0), comments)
	assert.Equal(t, int64(0), likes)
	assert.Equal(t, int64(0), edges)
	assert.Equal(t, int64(0), notifications)

	got, err := postRepo.GetByID(ctx, bobPost.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, got.AuthorID)
}

func TestUserRepository_Update(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{ID: "user_1", Username: "alice", Onboarding: true}
	require.NoError(t, repo.Create(ctx, user))

	user.Bio = "updated"
	user.Onboarding = false
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Bio)
	assert.False(t, got.Onboarding)
}
