package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"typeroo-api/internal/domain"
	"typeroo-api/internal/repository"
)

const (
	maxBioLength         = 300
	maxDisplayNameLength = 50
	maxUsernameLength    = 20
	maxEmailLength       = 50
	minPasswordLength    = 6
	maxPasswordLength    = 120
)

// Limits caps the size of listings returned to callers.
type Limits struct {
	DefaultPageSize  int
	MaxPageSize      int
	MaxSearchResults int
}

// ProfileUpdate carries the optional public profile fields. Nil or blank
// fields keep their stored value.
type ProfileUpdate struct {
	Bio         *string
	AvatarURL   *string
	DisplayName *string
}

// SettingsUpdate carries the optional account settings. Changing username,
// email or password requires CurrentPassword.
type SettingsUpdate struct {
	Username        *string
	Email           *string
	Password        *string
	CurrentPassword *string
	ThemePreference *string
}

// UserService serves profile reads and the profile/settings mutations of the
// calling user.
type UserService struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	limits   Limits
	validate *validator.Validate
	now      func() time.Time
}

func NewUserService(users repository.UserRepository, hasher PasswordHasher, limits Limits) *UserService {
	return &UserService{
		users:    users,
		hasher:   hasher,
		limits:   limits,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetProfile returns the caller's own account without the password hash.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return sanitizeUser(user), nil
}

// GetPublicProfile returns any user's profile without password hash or email.
func (s *UserService) GetPublicProfile(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}
	return publicUser(user), nil
}

// Search finds users whose username contains query, ignoring case.
func (s *UserService) Search(ctx context.Context, query string) ([]domain.User, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	users, err := s.users.SearchByUsername(ctx, query, s.limits.MaxSearchResults)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(users))
	for i := range users {
		out = append(out, *publicUser(&users[i]))
	}
	return out, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, req ProfileUpdate) error {
	if present(req.Bio) && utf8.RuneCountInString(*req.Bio) > maxBioLength {
		return invalid("Bio must be at most %d characters", maxBioLength)
	}
	if present(req.DisplayName) && utf8.RuneCountInString(*req.DisplayName) > maxDisplayNameLength {
		return invalid("Display name must be at most %d characters", maxDisplayNameLength)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}

	if present(req.Bio) {
		user.Bio = *req.Bio
	}
	if present(req.AvatarURL) {
		user.AvatarURL = *req.AvatarURL
	}
	if present(req.DisplayName) {
		user.DisplayName = *req.DisplayName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return notFound(err)
	}
	return nil
}

// UpdateSettings applies theme, username, email and password changes. Every
// check runs before the single write, so a rejected request changes nothing.
func (s *UserService) UpdateSettings(ctx context.Context, userID string, req SettingsUpdate) error {
	if err := s.checkSettings(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFound(err)
	}

	if req.ThemePreference != nil {
		user.ThemePreference = *req.ThemePreference
	}

	usernameChanged := present(req.Username) && *req.Username != user.Username
	emailChanged := present(req.Email) && *req.Email != user.Email
	passwordChanged := req.Password != nil && *req.Password != ""

	if usernameChanged || emailChanged || passwordChanged {
		if req.CurrentPassword == nil || !s.hasher.Matches(user.PasswordHash, *req.CurrentPassword) {
			return ErrInvalidCurrentPassword
		}
	}

	now := s.now()
	if usernameChanged {
		taken, err := s.users.ExistsByUsername(ctx, *req.Username)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}
		if user.LastUsernameUpdate != nil && monthsBetween(*user.LastUsernameUpdate, now) < 1 {
			return ErrUsernameChangeTooSoon
		}
		user.Username = *req.Username
		user.LastUsernameUpdate = &now
	}

	if emailChanged {
		used, err := s.users.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return err
		}
		if used {
			return ErrEmailInUse
		}
		user.Email = *req.Email
	}

	if passwordChanged {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			// lost a race with another rename or email change
			if usernameChanged {
				return ErrUsernameTaken
			}
			return ErrEmailInUse
		default:
			return notFound(err)
		}
	}
	return nil
}

func (s *UserService) checkSettings(req SettingsUpdate) error {
	if present(req.Username) && utf8.RuneCountInString(*req.Username) > maxUsernameLength {
		return invalid("Username must be at most %d characters", maxUsernameLength)
	}
	if present(req.Email) {
		if utf8.RuneCountInString(*req.Email) > maxEmailLength {
			return invalid("Email must be at most %d characters", maxEmailLength)
		}
		if err := s.validate.Var(*req.Email, "email"); err != nil {
			return invalid("Email is not a valid address")
		}
	}
	if req.Password != nil && *req.Password != "" {
		n := utf8.RuneCountInString(*req.Password)
		if n < minPasswordLength || n > maxPasswordLength {
			return invalid("Password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
		}
	}
	return nil
}

// DeleteAccount removes the caller together with their texts and results.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// monthsBetween counts whole calendar months from start to end. A month only
// completes once end reaches start's day of month and time of day.
func monthsBetween(start, end time.Time) int {
	start, end = start.UTC(), end.UTC()
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())

	startRest := time.Duration(start.Day())*24*time.Hour + clock(start)
	endRest := time.Duration(end.Day())*24*time.Hour + clock(end)
	switch {
	case months > 0 && endRest < startRest:
		months--
	case months < 0 && endRest > startRest:
		months++
	}
	return months
}

func clock(t time.Time) time.Duration {
	return t.Sub(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()))
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	out := *user
	out.PasswordHash = ""
	out.Roles = append([]string(nil), user.Roles...)
	return &out
}

func publicUser(user *domain.User) *domain.User {
	out := sanitizeUser(user)
	if out != nil {
		out.Email = ""
	}
	return out
}
