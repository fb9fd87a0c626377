// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxContentLen is the maximum length of post and comment content.
const MaxContentLen = 256

// Post represents a short text update. A repost carries IsRepost=true and
// OriginalPostID pointing at the post being shared; CommentID is set when the
// share originated from a comment context.
//
// NumComments, NumLikes and NumShares are denormalized counters. They are
// maintained in the same transaction as the row that changes them, never as a
// separate unguarded statement.
type Post struct {
	ID             string  `gorm:"primaryKey;size:36" json:"id"`
	AuthorID       string  `gorm:"size:256;index" json:"author_id"`
	Content        string  `gorm:"size:256;not null" json:"content"`
	OriginalPostID *string `gorm:"size:36;index" json:"original_post_id,omitempty"`
	CommentID      *string `gorm:"size:36" json:"comment_id,omitempty"`
	NumComments    int     `gorm:"default:0" json:"num_comments"`
	NumLikes       int     `gorm:"default:0" json:"num_likes"`
	NumShares      int     `gorm:"default:0" json:"num_shares"`
	IsRepost       bool    `gorm:"default:false" json:"is_repost"`

	Author   *User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Comments []Comment  `gorm:"foreignKey:OriginalPostID" json:"comments,omitempty"`
	Likes    []PostLike `gorm:"foreignKey:PostID" json:"likes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when no ID was provided.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
