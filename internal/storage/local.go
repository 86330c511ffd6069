package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalService keeps objects as flat files in one directory that the HTTP
// server exposes under BaseURL.
type LocalService struct {
	dir     string
	baseURL string
}

func NewLocalService(dir, baseURL string) *LocalService {
	return &LocalService{
		dir:     filepath.Clean(dir),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Dir is the directory objects are written to.
func (s *LocalService) Dir() string {
	return s.dir
}

func (s *LocalService) Put(ctx context.Context, key string, body io.Reader, _ PutOptions) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	target := filepath.Join(s.dir, key)
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", target, err)
	}
	_, err = io.Copy(f, body)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("close %s: %w", target, closeErr)
	}

	return s.baseURL + "/" + url.PathEscape(key), nil
}

var _ Service = (*LocalService)(nil)
