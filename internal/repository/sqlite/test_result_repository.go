package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"typeroo-api/internal/domain"
	"typeroo-api/internal/repository"
)

type TestResultRepository struct {
	db *sql.DB
}

var _ repository.TestResultRepository = (*TestResultRepository)(nil)

func NewTestResultRepository(db *sql.DB) *TestResultRepository {
	return &TestResultRepository{db: db}
}

func (r *TestResultRepository) Create(ctx context.Context, result *domain.TestResult) error {
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now().UTC()
	}
	return withTx(ctx, r.db, func(tx execer) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO test_results (id, user_id, username, wpm, raw_wpm, accuracy, duration, correct_chars, incorrect_chars, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.ID,
			result.UserID,
			result.Username,
			result.WPM,
			result.RawWPM,
			result.Accuracy,
			result.Duration,
			result.CorrectChars,
			result.IncorrectChars,
			result.Timestamp.UTC(),
		); err != nil {
			return fmt.Errorf("insert test result: %w", err)
		}

		res, err := tx.ExecContext(ctx, `UPDATE users SET total_tests = total_tests + 1 WHERE id = ?`, result.UserID)
		if err != nil {
			return fmt.Errorf("increment total tests: %w", err)
		}
		return expectAffected(res, "increment total tests")
	})
}

func (r *TestResultRepository) ListByUser(ctx context.Context, userID string, page domain.PageRequest) (domain.ResultPage, error) {
	out := domain.ResultPage{
		Results: make([]domain.TestResult, 0),
		Page:    page.Page,
		Size:    page.Size,
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM test_results WHERE user_id = ?`, userID).Scan(&out.TotalElements); err != nil {
		return domain.ResultPage{}, fmt.Errorf("count test results: %w", err)
	}
	if out.TotalElements == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, username, wpm, raw_wpm, accuracy, duration, correct_chars, incorrect_chars, timestamp
FROM test_results
WHERE user_id = ?
ORDER BY timestamp DESC, rowid DESC
LIMIT ? OFFSET ?`,
		userID,
		page.Size,
		page.Offset(),
	)
	if err != nil {
		return domain.ResultPage{}, fmt.Errorf("list test results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var res domain.TestResult
		if err := rows.Scan(
			&res.ID,
			&res.UserID,
			&res.Username,
			&res.WPM,
			&res.RawWPM,
			&res.Accuracy,
			&res.Duration,
			&res.CorrectChars,
			&res.IncorrectChars,
			&res.Timestamp,
		); err != nil {
			return domain.ResultPage{}, fmt.Errorf("scan test result: %w", err)
		}
		out.Results = append(out.Results, res)
	}
	if err := rows.Err(); err != nil {
		return domain.ResultPage{}, fmt.Errorf("iterate test results: %w", err)
	}
	return out, nil
}

func (r *TestResultRepository) MaxWPM(ctx context.Context, userID string, duration int) (float64, error) {
	var best sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, `
SELECT MAX(wpm)
FROM test_results
WHERE user_id = ? AND duration = ?`,
		userID,
		duration,
	).Scan(&best); err != nil {
		return 0, fmt.Errorf("max wpm: %w", err)
	}
	if !best.Valid {
		return 0, nil
	}
	return best.Float64, nil
}
