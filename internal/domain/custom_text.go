package domain

import "time"

// CustomText is a practice text authored by a user.
type CustomText struct {
	ID        string
	UserID    string
	Content   string
	IsPublic  bool
	CreatedAt time.Time
}
