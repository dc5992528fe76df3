package blobstore

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/internal/util"
)

// FileStore is a content-addressed Store persisted as one file per blob
// under a single directory, so payload references stay resolvable across
// process restarts.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the directory if needed and returns a FileStore
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(cid ContentID) string {
	return filepath.Join(s.dir, string(cid))
}

func (s *FileStore) Put(ctx context.Context, data []byte, meta Metadata) (ContentID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	digest := sha256.Sum256(data)
	cid := ContentID(util.HexEncode(digest[:]))
	if err := os.WriteFile(s.path(cid), data, 0600); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	return cid, nil
}

func (s *FileStore) Get(ctx context.Context, cid ContentID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(cid))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob: %w", err)
	}
	return data, nil
}

func (s *FileStore) Unpin(ctx context.Context, cid ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.path(cid))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}
