package service

import (
	"context"
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/models"
)

type postRepoStub struct {
	createFn          func(context.Context, *models.Post) error
	getByIDFn         func(context.Context, string) (*models.Post, error)
	getThreadFn       func(context.Context, string) (*models.Post, error)
	feedFn            func(context.Context, *time.Time, int) ([]*models.Post, error)
	feedByAuthorFn    func(context.Context, string, *time.Time, int) ([]*models.Post, error)
	feedByFollowingFn func(context.Context, string, *time.Time, int) ([]*models.Post, error)
	updateFn          func(context.Context, *models.Post) error
	deleteFn          func(context.Context, string) error
	toggleLikeFn      func(context.Context, string, string) (bool, error)
	shareFn           func(context.Context, *models.Post) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetThread(ctx context.Context, id string) (*models.Post, error) {
	return s.getThreadFn(ctx, id)
}
func (s *postRepoStub) Feed(ctx context.Context, before *time.Time, limit int) ([]*models.Post, error) {
	return s.feedFn(ctx, before, limit)
}
func (s *postRepoStub) FeedByAuthor(ctx context.Context, authorID string, before *time.Time, limit int) ([]*models.Post, error) {
	return s.feedByAuthorFn(ctx, authorID, before, limit)
}
func (s *postRepoStub) FeedByFollowing(ctx context.Context, userID string, before *time.Time, limit int) ([]*models.Post, error) {
	return s.feedByFollowingFn(ctx, userID, before, limit)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, postID, authorID string) (bool, error) {
	return s.toggleLikeFn(ctx, postID, authorID)
}
func (s *postRepoStub) Share(ctx context.Context, repost *models.Post) error {
	return s.shareFn(ctx, repost)
}

type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, string) (*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, string) error
	toggleLikeFn func(context.Context, string, string) (bool, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) ToggleLike(ctx context.Context, commentID, authorID string) (bool, error) {
	return s.toggleLikeFn(ctx, commentID, authorID)
}

type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, string) error
	searchFn        func(context.Context, string, *time.Time, int) ([]*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, term string, before *time.Time, limit int) ([]*models.User, error) {
	return s.searchFn(ctx, term, before, limit)
}

type followRepoStub struct {
	toggleFn        func(context.Context, string, string) (bool, error)
	listFollowersFn func(context.Context, string) ([]*models.User, error)
	listFollowingFn func(context.Context, string) ([]*models.User, error)
	isFollowingFn   func(context.Context, string, string) (bool, error)
}

func (s *followRepoStub) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.toggleFn(ctx, followerID, followingID)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID string) ([]*models.User, error) {
	return s.listFollowersFn(ctx, userID)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID string) ([]*models.User, error) {
	return s.listFollowingFn(ctx, userID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}
