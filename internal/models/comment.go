package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reply on a post. ParentCommentID is nil for top-level
// comments. OriginalCommentID tracks the ultimate ancestor of a reply chain
// so that deleting an ancestor can remove the whole chain with one query.
type Comment struct {
	ID                string  `gorm:"primaryKey;size:36" json:"id"`
	OriginalPostID    string  `gorm:"size:36;not null;index" json:"original_post_id"`
	ParentCommentID   *string `gorm:"size:36;index" json:"parent_comment_id,omitempty"`
	OriginalCommentID *string `gorm:"size:36;index" json:"original_comment_id,omitempty"`
	AuthorID          string  `gorm:"size:256;not null;index" json:"author_id"`
	Content           string  `gorm:"size:256;not null" json:"content"`
	NumLikes          int     `gorm:"default:0" json:"num_likes"`
	NumComments       int     `gorm:"default:0" json:"num_comments"`

	Author        *User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ChildComments []Comment     `gorm:"foreignKey:ParentCommentID" json:"child_comments,omitempty"`
	Likes         []CommentLike `gorm:"foreignKey:CommentID" json:"likes,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when no ID was provided.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
