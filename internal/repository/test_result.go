package repository

import (
	"context"

	"typeroo-api/internal/domain"
)

// TestResultRepository appends and queries finished typing tests.
type TestResultRepository interface {
	// Create stores the result and bumps the owner's total test counter in
	// the same transaction.
	Create(ctx context.Context, result *domain.TestResult) error
	ListByUser(ctx context.Context, userID string, page domain.PageRequest) (domain.ResultPage, error)
	// MaxWPM returns the best WPM for the duration, or 0 when there is none.
	MaxWPM(ctx context.Context, userID string, duration int) (float64, error)
}
