// Package storage stores uploaded blobs and hands back a reference to them.
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

	"github.com/google/uuid"
)

var ErrInvalidRef = errors.New("invalid blob reference")

// BlobStore is what the API needs from a blob backend.
type BlobStore interface {
	// Save durably writes r under a new reference. ext is kept as the
	// reference suffix.
	Save(ctx context.Context, prefix, ext string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
	URL(ref string) string
}

// LocalStore keeps blobs in a directory on the local disk.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Save(ctx context.Context, prefix, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Generate a unique file name
	ref := path.Join(prefix, uuid.New().String()+strings.ToLower(ext))
	filePath, err := s.path(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	// The reference is only returned once the data reached the disk
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("failed to sync blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to close blob: %w", err)
	}
	return ref, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	filePath, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

func (s *LocalStore) URL(ref string) string {
	return s.BaseURL + "/" + ref
}

func (s *LocalStore) path(ref string) (string, error) {
	clean := path.Clean("/" + ref)
	if ref == "" || clean != "/"+ref {
		return "", ErrInvalidRef
	}
	return filepath.Join(s.Dir, filepath.FromSlash(ref)), nil
}
