package domain

import "time"

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User represents a registered typist.
type User struct {
	ID                 string
	Username           string
	Email              string
	PasswordHash       string
	Bio                string
	AvatarURL          string
	DisplayName        string
	ThemePreference    string
	TotalTests         int64
	LastUsernameUpdate *time.Time
	Roles              []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
