// Package blobstore defines the content-addressed blob store collaborator
// that holds encrypted certificate payloads, plus an in-memory
// implementation for tests and single-process deployments.
package blobstore

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/internal/util"
)

// ErrNotFound is returned when the referenced content ID is absent.
var ErrNotFound = errors.New("content not found")

// ContentID addresses a stored blob. The core treats it as opaque.
type ContentID string

// Metadata is optional descriptive data attached at Put time.
type Metadata map[string]string

// Store is the blob-store collaborator contract. Put must be safe to call
// once per record; Unpin is best-effort and its failures are logged, not
// fatal, to the record's own lifecycle.
type Store interface {
	Put(ctx context.Context, data []byte, meta Metadata) (ContentID, error)
	Get(ctx context.Context, cid ContentID) ([]byte, error)
	Unpin(ctx context.Context, cid ContentID) error
}

// Memory is a thread-safe in-memory Store that content-addresses blobs by
// SHA-256, so Get(Put(b)) == b and repeated Puts of the same bytes are
// idempotent.
type Memory struct {
	mu    sync.RWMutex
	blobs map[ContentID][]byte
	meta  map[ContentID]Metadata
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory blob store.
func NewMemory() *Memory {
	return &Memory{
		blobs: make(map[ContentID][]byte),
		meta:  make(map[ContentID]Metadata),
	}
}

func (m *Memory) Put(ctx context.Context, data []byte, meta Metadata) (ContentID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	digest := sha256.Sum256(data)
	cid := ContentID(util.HexEncode(digest[:]))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[cid] = util.CopyBytes(data)
	if meta != nil {
		m.meta[cid] = meta
	}
	return cid, nil
}

func (m *Memory) Get(ctx context.Context, cid ContentID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[cid]
	if !ok {
		return nil, ErrNotFound
	}
	return util.CopyBytes(data), nil
}

func (m *Memory) Unpin(ctx context.Context, cid ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[cid]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, cid)
	delete(m.meta, cid)
	return nil
}
