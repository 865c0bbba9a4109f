// Package storage implements backend.ObjectStore on the local filesystem and in memory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"photostudio/internal/backend"
)

var ErrInvalidPath = errors.New("invalid object path")

// LocalStore writes objects under <root>/<bucket>/ and serves them at
// <baseURL>/storage/<bucket>/<path>.
type LocalStore struct {
	root    string
	bucket  string
	baseURL string
}

func NewLocalStore(root, bucket, baseURL string) (*LocalStore, error) {
	dir := filepath.Join(root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir: %w", err)
	}
	return &LocalStore{
		root:    root,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// BucketDir is the directory the HTTP router serves read-only.
func (s *LocalStore) BucketDir() string {
	return filepath.Join(s.root, s.bucket)
}

func (s *LocalStore) Bucket() string {
	return s.bucket
}

// CleanPath rejects absolute paths, empty paths and any ".." segment.
func CleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return path.Clean(p), nil
}

// Upload never overwrites: an existing object yields backend.ErrConflict.
func (s *LocalStore) Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) error {
	clean, err := CleanPath(objectPath)
	if err != nil {
		return err
	}
	full := filepath.Join(s.BucketDir(), filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", backend.ErrConflict, clean)
		}
		return err
	}

	if _, err := io.Copy(f, contextReader{ctx: ctx, r: r}); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return err
	}
	return nil
}

func (s *LocalStore) PublicURL(objectPath string) string {
	return s.baseURL + "/storage/" + s.bucket + "/" + strings.TrimLeft(objectPath, "/")
}

// contextReader stops a copy once ctx is cancelled.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
