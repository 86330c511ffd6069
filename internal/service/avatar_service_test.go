package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typeroo-api/internal/repository/sqlite"
	"typeroo-api/internal/storage"
	"typeroo-api/internal/testutil"
)

type failingStore struct {
	calls int
}

func (s *failingStore) Put(context.Context, string, io.Reader, storage.PutOptions) (string, error) {
	s.calls++
	return "", errors.New("bucket unreachable")
}

func TestAvatarService_UploadLocal(t *testing.T) {
	db := testutil.DB(t)
	users := sqlite.NewUserRepository(db)
	dir := t.TempDir()
	logger, hook := test.NewNullLogger()
	svc := NewAvatarService(users, storage.NewLocalService(dir, "http://localhost:8080/uploads/"), 1024, logger)
	at := time.UnixMilli(1717000000000)
	svc.now = func() time.Time { return at }
	ctx := context.Background()
	user := testutil.CreateUser(t, db, testPassword)

	url, err := svc.Upload(ctx, user.ID, AvatarUpload{
		Filename:    "me.png",
		Size:        4,
		ContentType: "image/png",
		Body:        strings.NewReader("\x89PNG"),
	})
	require.NoError(t, err)

	key := user.ID + "_1717000000000_me.png"
	assert.Equal(t, "http://localhost:8080/uploads/"+key, url)

	data, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(data))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, url, got.AvatarURL)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "avatar stored", hook.LastEntry().Message)
}

func TestAvatarService_UploadRejects(t *testing.T) {
	db := testutil.DB(t)
	users := sqlite.NewUserRepository(db)
	store := &failingStore{}
	logger, _ := test.NewNullLogger()
	svc := NewAvatarService(users, store, 1024, logger)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, testPassword)

	upload := func(name string, size int64) AvatarUpload {
		return AvatarUpload{Filename: name, Size: size, Body: strings.NewReader("x")}
	}

	for _, name := range []string{"../evil.png", `..\..\evil.png`, "a/../../evil.png"} {
		_, err := svc.Upload(ctx, user.ID, upload(name, 1))
		assert.ErrorIs(t, err, ErrInvalidFilename, name)
	}

	var verr *ValidationError
	_, err := svc.Upload(ctx, user.ID, upload("", 1))
	assert.ErrorAs(t, err, &verr)
	_, err = svc.Upload(ctx, user.ID, upload("big.png", 2048))
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Upload(ctx, "missing-user", upload("me.png", 1))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.calls)

	_, err = svc.Upload(ctx, user.ID, upload("me.png", 1))
	require.Error(t, err)
	assert.Equal(t, "Could not upload file: bucket unreachable", err.Error())
	assert.Equal(t, 1, store.calls)

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AvatarURL)
}
