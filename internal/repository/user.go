package repository

import (
	"context"
	"errors"

	"typeroo-api/internal/domain"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("already exists")
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// SearchByUsername returns at most limit users whose username contains
	// query, ignoring case.
	SearchByUsername(ctx context.Context, query string, limit int) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the user together with the texts and results they own.
	Delete(ctx context.Context, id string) error
}
