package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"typeroo-api/internal/domain"
	"typeroo-api/internal/repository"
)

type CustomTextRepository struct {
	db *sql.DB
}

var _ repository.CustomTextRepository = (*CustomTextRepository)(nil)

func NewCustomTextRepository(db *sql.DB) *CustomTextRepository {
	return &CustomTextRepository{db: db}
}

func (r *CustomTextRepository) Create(ctx context.Context, text *domain.CustomText) error {
	if text.CreatedAt.IsZero() {
		text.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO custom_texts (id, user_id, content, is_public, created_at)
VALUES (?, ?, ?, ?, ?)`,
		text.ID,
		text.UserID,
		text.Content,
		text.IsPublic,
		text.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert custom text: %w", err)
	}
	return nil
}

func (r *CustomTextRepository) ListByUser(ctx context.Context, userID string) ([]domain.CustomText, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, content, is_public, created_at
FROM custom_texts
WHERE user_id = ?
ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list custom texts: %w", err)
	}
	defer rows.Close()

	texts := make([]domain.CustomText, 0)
	for rows.Next() {
		var text domain.CustomText
		if err := rows.Scan(&text.ID, &text.UserID, &text.Content, &text.IsPublic, &text.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan custom text: %w", err)
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate custom texts: %w", err)
	}
	return texts, nil
}

func (r *CustomTextRepository) DeleteOwned(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM custom_texts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete custom text: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete custom text rows affected: %w", err)
	}
	return n > 0, nil
}
