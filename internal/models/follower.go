package models

// Follower is a directed edge in the social graph: FollowerID follows
// FollowingID. The composite primary key guarantees at most one row per
// ordered pair regardless of how toggle requests interleave.
type Follower struct {
	FollowerID  string `gorm:"primaryKey;size:256" json:"follower_id"`
	FollowingID string `gorm:"primaryKey;size:256" json:"following_id"`
}
