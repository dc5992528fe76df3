// Package ledger defines the external ledger collaborator used to anchor
// content hashes, plus an in-memory implementation. The core never embeds
// ledger-specific encoding beyond treating the content hash as an opaque
// prefixed hex string.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/internal/util"
)

// ErrAnchorFailed wraps transport or consensus failures from the ledger.
var ErrAnchorFailed = errors.New("ledger anchoring failed")

// Metadata is optional context recorded with an anchor.
type Metadata map[string]string

// Receipt proves a content hash was anchored.
type Receipt struct {
	TxID        string    `json:"tx_id"`
	BlockHeight uint64    `json:"block_height"`
	Timestamp   time.Time `json:"timestamp"`
}

// Ledger is the anchoring collaborator contract. Retries, gas and network
// plumbing belong to implementations, never to callers.
type Ledger interface {
	Anchor(ctx context.Context, contentHash string, meta Metadata) (Receipt, error)
	VerifyAnchored(ctx context.Context, contentHash string) (bool, error)
}

// Memory is a thread-safe in-memory Ledger for tests and development.
type Memory struct {
	mu      sync.Mutex
	height  uint64
	anchors map[string]Receipt

	// FailNext makes the next Anchor call fail, for exercising
	// no-partial-effect behavior in callers.
	FailNext bool
}

var _ Ledger = (*Memory)(nil)

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{anchors: make(map[string]Receipt)}
}

func (m *Memory) Anchor(ctx context.Context, contentHash string, meta Metadata) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return Receipt{}, fmt.Errorf("%w: simulated outage", ErrAnchorFailed)
	}

	if receipt, ok := m.anchors[contentHash]; ok {
		return receipt, nil
	}

	txBytes, err := util.RandomBytes(16)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrAnchorFailed, err)
	}
	m.height++
	receipt := Receipt{
		TxID:        "0x" + util.HexEncode(txBytes),
		BlockHeight: m.height,
		Timestamp:   time.Now().UTC(),
	}
	m.anchors[contentHash] = receipt
	return receipt, nil
}

func (m *Memory) VerifyAnchored(ctx context.Context, contentHash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.anchors[contentHash]
	return ok, nil
}
