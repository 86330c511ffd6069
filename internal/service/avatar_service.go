package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"typeroo-api/internal/repository"
	"typeroo-api/internal/storage"
)

// AvatarUpload is a user-supplied image file.
type AvatarUpload struct {
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// AvatarService stores uploaded avatars and points the user's profile at them.
type AvatarService struct {
	users   repository.UserRepository
	store   storage.Service
	maxSize int64
	logger  logrus.FieldLogger
	now     func() time.Time
}

func NewAvatarService(users repository.UserRepository, store storage.Service, maxSize int64, logger logrus.FieldLogger) *AvatarService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AvatarService{
		users:   users,
		store:   store,
		maxSize: maxSize,
		logger:  logger,
		now:     time.Now,
	}
}

// Upload stores the file as "<userID>_<unix millis>_<name>" and saves its URL
// as the user's avatar.
func (s *AvatarService) Upload(ctx context.Context, userID string, file AvatarUpload) (string, error) {
	name := cleanFilename(file.Filename)
	if strings.Contains(name, "..") {
		return "", ErrInvalidFilename
	}
	name = path.Base(name)
	if name == "" || name == "." || name == "/" {
		return "", invalid("Filename is required")
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", invalid("File exceeds the %d byte limit", s.maxSize)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", notFound(err)
	}

	key := fmt.Sprintf("%s_%d_%s", userID, s.now().UnixMilli(), name)
	url, err := s.store.Put(ctx, key, file.Body, storage.PutOptions{
		ContentType: file.ContentType,
		Size:        file.Size,
	})
	if err != nil {
		return "", uploadFailed(err)
	}

	user.AvatarURL = url
	if err := s.users.Update(ctx, user); err != nil {
		return "", notFound(err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, "key": key, "size": file.Size}).Info("avatar stored")
	return url, nil
}

func uploadFailed(err error) error {
	return fmt.Errorf("Could not upload file: %w", err)
}

// cleanFilename normalizes separators and resolves "." segments, keeping any
// ".." that would climb out of the upload directory.
func cleanFilename(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	if name == "" {
		return ""
	}
	return path.Clean(name)
}
