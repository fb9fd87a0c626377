// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a profile in the Pyjama Portal application.
// The ID is minted by the external identity provider and arrives via the
// identity webhook, so it is an opaque string rather than a generated key.
type User struct {
	ID           string    `gorm:"primaryKey;size:256" json:"id"`
	Username     string    `gorm:"size:100;unique;not null" json:"username"`
	FirstName    string    `gorm:"size:50;not null" json:"first_name"`
	LastName     string    `gorm:"size:50;not null" json:"last_name"`
	Bio          string    `gorm:"size:256" json:"bio"`
	ProfileImage string    `gorm:"size:256" json:"profile_image"`
	Onboarding   bool      `gorm:"default:true" json:"onboarding"`
	CreatedAt    time.Time `json:"created_at"`

	Posts     []Post     `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
	Followers []Follower `gorm:"foreignKey:FollowingID" json:"followers,omitempty"`
	Following []Follower `gorm:"foreignKey:FollowerID" json:"following,omitempty"`
}
