package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"typeroo-api/internal/domain"
	"typeroo-api/internal/repository"
)

// CustomTextService manages the caller's own practice texts.
type CustomTextService struct {
	texts repository.CustomTextRepository
	now   func() time.Time
}

func NewCustomTextService(texts repository.CustomTextRepository) *CustomTextService {
	return &CustomTextService{
		texts: texts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *CustomTextService) ListMine(ctx context.Context, userID string) ([]domain.CustomText, error) {
	return s.texts.ListByUser(ctx, userID)
}

func (s *CustomTextService) Create(ctx context.Context, userID, content string, isPublic bool) (*domain.CustomText, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	text := &domain.CustomText{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		IsPublic:  isPublic,
		CreatedAt: s.now(),
	}
	if err := s.texts.Create(ctx, text); err != nil {
		return nil, err
	}
	return text, nil
}

// Delete removes the text when the caller owns it. Missing and foreign texts
// fail the same way so callers cannot probe for other users' ids.
func (s *CustomTextService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.texts.DeleteOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCannotDeleteText
	}
	return nil
}
