package models

import (
	"time"
)

// PostLike records that a user liked a post. The composite primary key
// doubles as the uniqueness constraint the like/unlike toggle relies on:
// inserts go through INSERT ... ON CONFLICT DO NOTHING so concurrent toggles
// by the same author can never produce a duplicate row.
type PostLike struct {
	PostID    string    `gorm:"primaryKey;size:36" json:"post_id"`
	AuthorID  string    `gorm:"primaryKey;size:256" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// CommentLike records that a user liked a comment. Same uniqueness scheme as
// PostLike.
type CommentLike struct {
	CommentID string    `gorm:"primaryKey;size:36" json:"comment_id"`
	AuthorID  string    `gorm:"primaryKey;size:256" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
