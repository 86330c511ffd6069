package repository

import (
	"context"

	"typeroo-api/internal/domain"
)

// CustomTextRepository manages user-authored practice texts.
type CustomTextRepository interface {
	Create(ctx context.Context, text *domain.CustomText) error
	ListByUser(ctx context.Context, userID string) ([]domain.CustomText, error)
	// DeleteOwned deletes the text only when userID owns it and reports
	// whether a row was removed.
	DeleteOwned(ctx context.Context, id, userID string) (bool, error)
}
