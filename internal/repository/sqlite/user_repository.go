package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"typeroo-api/internal/domain"
	"typeroo-api/internal/repository"
)

const userColumns = `id, username, email, password_hash, bio, avatar_url, display_name, theme_preference, total_tests, last_username_update, roles, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if len(user.Roles) == 0 {
		user.Roles = []string{domain.RoleUser}
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Bio,
		user.AvatarURL,
		user.DisplayName,
		user.ThemePreference,
		user.TotalTests,
		nullTime(user.LastUsernameUpdate),
		joinRoles(user.Roles),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user: %w", repository.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email)
}

func (r *UserRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return found, nil
}

func (r *UserRepository) SearchByUsername(ctx context.Context, query string, limit int) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+userColumns+`
FROM users
WHERE fold(username) LIKE ? ESCAPE '\'
ORDER BY username
LIMIT ?`,
		"%"+escapeLike(strings.ToLower(query))+"%",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Update writes every mutable column except total_tests, which only moves
// through TestResultRepository.Create.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE users
SET username=?, email=?, password_hash=?, bio=?, avatar_url=?, display_name=?, theme_preference=?, last_username_update=?, roles=?, updated_at=?
WHERE id=?`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Bio,
		user.AvatarURL,
		user.DisplayName,
		user.ThemePreference,
		nullTime(user.LastUsernameUpdate),
		joinRoles(user.Roles),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update user: %w", repository.ErrConflict)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res, "update user")
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx execer) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM custom_texts WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("delete user texts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM test_results WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("delete user results: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		user        domain.User
		lastRename  sql.NullTime
		rolesColumn string
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Bio,
		&user.AvatarURL,
		&user.DisplayName,
		&user.ThemePreference,
		&user.TotalTests,
		&lastRename,
		&rolesColumn,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if lastRename.Valid {
		t := lastRename.Time.UTC()
		user.LastUsernameUpdate = &t
	}
	user.Roles = splitRoles(rolesColumn)
	return &user, nil
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func joinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

func splitRoles(column string) []string {
	var roles []string
	for _, r := range strings.Split(column, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
