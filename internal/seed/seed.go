// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/toni-krstic/pyjama-portal/internal/models"
	"github.com/toni-krstic/pyjama-portal/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with realistic development data. Writes go
// through the repositories so counters and notifications come out consistent
// with what the running application would produce.
type Seeder struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository
	rng         *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		commentRepo: repository.NewCommentRepository(db),
		followRepo:  repository.NewFollowRepository(db),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes all seeded tables.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	tables := []any{
		&models.Notification{},
		&models.CommentLike{},
		&models.PostLike{},
		&models.Comment{},
		&models.Post{},
		&models.Follower{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

// Seed runs the full seeding pass.
func (s *Seeder) Seed(ctx context.Context, opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	users, err := s.SeedUsers(ctx, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := s.SeedPosts(ctx, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	if err := s.SeedEngagement(ctx, users, posts); err != nil {
		return fmt.Errorf("seeding engagement: %w", err)
	}
	log.Println("seeding complete")
	return nil
}

// SeedUsers creates n users with fake identities. IDs mimic the opaque
// strings the identity provider mints.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		user := &models.User{
			ID:           "user_" + gofakeit.UUID(),
			Username:     strings.ToLower(fmt.Sprintf("%s_%s%d", first, last, s.rng.Intn(1000))),
			FirstName:    first,
			LastName:     last,
			Bio:          gofakeit.Sentence(8),
			ProfileImage: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
			Onboarding:   false,
			CreatedAt:    s.pastTime(120),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedPosts creates n posts spread across the given users with a realistic
// created_at spread.
func (s *Seeder) SeedPosts(ctx context.Context, users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		post := &models.Post{
			AuthorID:  author.ID,
			Content:   s.shortContent(),
			CreatedAt: s.pastTime(90),
		}
		if err := s.postRepo.Create(ctx, post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// SeedEngagement wires follows, likes, comments, replies and a few reposts
// between the seeded users and posts.
func (s *Seeder) SeedEngagement(ctx context.Context, users []*models.User, posts []*models.Post) error {
	if len(users) < 2 || len(posts) == 0 {
		return nil
	}

	// Follow graph: each user follows a handful of others.
	for _, user := range users {
		for i := 0; i < 1+s.rng.Intn(5); i++ {
			other := users[s.rng.Intn(len(users))]
			if other.ID == user.ID {
				continue
			}
			if _, err := s.followRepo.Toggle(ctx, user.ID, other.ID); err != nil {
				return err
			}
		}
	}

	// Likes and comments.
	for _, post := range posts {
		for i := 0; i < s.rng.Intn(6); i++ {
			liker := users[s.rng.Intn(len(users))]
			if _, err := s.postRepo.ToggleLike(ctx, post.ID, liker.ID); err != nil {
				return err
			}
		}
		for i := 0; i < s.rng.Intn(3); i++ {
			commenter := users[s.rng.Intn(len(users))]
			comment := &models.Comment{
				AuthorID:       commenter.ID,
				OriginalPostID: post.ID,
				Content:        s.shortContent(),
			}
			if err := s.commentRepo.Create(ctx, comment); err != nil {
				return err
			}
			// Occasional reply to keep threads interesting.
			if s.rng.Intn(3) == 0 {
				replier := users[s.rng.Intn(len(users))]
				parentID := comment.ID
				reply := &models.Comment{
					AuthorID:        replier.ID,
					OriginalPostID:  post.ID,
					ParentCommentID: &parentID,
					Content:         s.shortContent(),
				}
				if err := s.commentRepo.Create(ctx, reply); err != nil {
					return err
				}
			}
		}
	}

	// A few reposts.
	for i := 0; i < len(posts)/10+1; i++ {
		sharer := users[s.rng.Intn(len(users))]
		original := posts[s.rng.Intn(len(posts))]
		originalID := original.ID
		repost := &models.Post{
			AuthorID:       sharer.ID,
			Content:        s.shortContent(),
			OriginalPostID: &originalID,
			IsRepost:       true,
		}
		if err := s.postRepo.Share(ctx, repost); err != nil {
			return err
		}
	}

	return nil
}

// shortContent produces post-sized text within the content limit.
func (s *Seeder) shortContent() string {
	content := gofakeit.Sentence(6 + s.rng.Intn(10))
	if len(content) > models.MaxContentLen {
		content = content[:models.MaxContentLen]
	}
	return content
}

func (s *Seeder) pastTime(maxDays int) time.Time {
	daysBack := s.rng.Intn(maxDays)
	hoursBack := s.rng.Intn(24)
	minsBack := s.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}
