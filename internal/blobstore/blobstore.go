// Package blobstore abstracts where uploaded document bytes live. The
// repositories only ever see the returned storage key and checksum.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store accepts a file stream and returns a storage key plus a sha256
// checksum of the bytes written.
type Store interface {
	Put(ctx context.Context, fileName string, r io.Reader) (key, checksum string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// DiskStore writes blobs under a base directory, keyed by a random uuid so
// colliding filenames never overwrite each other.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the base directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Put(ctx context.Context, fileName string, r io.Reader) (string, string, error) {
	key := uuid.NewString() + filepath.Ext(fileName)
	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", "", fmt.Errorf("create blob: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(f, h), r); err != nil {
		os.Remove(f.Name())
		return "", "", fmt.Errorf("write blob: %w", err)
	}
	return key, hex.EncodeToString(h.Sum(nil)), nil
}

func (s *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, filepath.Base(key)))
}

func (s *DiskStore) Remove(ctx context.Context, key string) error {
	return os.Remove(filepath.Join(s.dir, filepath.Base(key)))
}
