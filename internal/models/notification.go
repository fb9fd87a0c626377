package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification texts. Undo operations (unlike, unfollow) locate the row to
// remove by (user_id, author_id, content), so these strings are part of the
// data contract, not presentation.
const (
	NotificationLikedPost        = "liked your post"
	NotificationLikedComment     = "liked your comment"
	NotificationCommentedPost    = "commented on your post"
	NotificationCommentedComment = "commented on your comment"
	NotificationSharedPost       = "shared your post"
	NotificationFollowed         = "followed you"
)

// Notification is written as a side effect of like, comment, share and
// follow operations. UserID is the recipient (the content owner), AuthorID
// the actor who triggered it.
type Notification struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	UserID    string  `gorm:"size:256;not null;index" json:"user_id"`
	AuthorID  string  `gorm:"size:256;not null" json:"author_id"`
	PostID    *string `gorm:"size:36" json:"post_id,omitempty"`
	CommentID *string `gorm:"size:36" json:"comment_id,omitempty"`
	Content   string  `gorm:"size:256;not null" json:"content"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns a fresh UUID when no ID was provided.
func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
