// Package testutil holds fixtures shared by package tests: a migrated SQLite
// database per test and fake users.
package testutil

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"typeroo-api/internal/domain"
	"typeroo-api/internal/repository/sqlite"
)

var Faker = gofakeit.New(rand.Uint64())

// DB opens a fresh migrated database inside the test's temp dir.
func DB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "typeroo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(context.Background(), db, nil))
	return db
}

// HashPassword hashes with the minimum bcrypt cost to keep tests fast.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// NewUser builds an unsaved user with random identity fields and the given password.
func NewUser(t *testing.T, password string) *domain.User {
	t.Helper()
	return &domain.User{
		ID:           uuid.NewString(),
		Username:     Faker.Username() + Faker.DigitN(4),
		Email:        Faker.Email(),
		PasswordHash: HashPassword(t, password),
		Roles:        []string{domain.RoleUser},
	}
}

// CreateUser stores a new random user and returns it.
func CreateUser(t *testing.T, db *sql.DB, password string) *domain.User {
	t.Helper()
	user := NewUser(t, password)
	require.NoError(t, sqlite.NewUserRepository(db).Create(context.Background(), user))
	return user
}
