// Package ledger records which city_roads sections were built and where they
// were published. Each dataset has a history of monotonically numbered
// entries; writers racing on the same version fail with
// ErrConcurrentModification instead of overwriting each other.
package ledger

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrConcurrentModification is returned when another writer recorded the
// same version first.
var ErrConcurrentModification = errors.New("ledger: concurrent modification detected")

// Entry is one recorded build.
type Entry struct {
	Dataset  string // dataset name, usually the container file name
	Version  uint64 // assigned by Record, starting at 1
	Key      string // published blob name, empty if not published
	IDs      int
	Bytes    int64
	Checksum uint32 // CRC32C of the section payload
	BuiltAt  time.Time
}

// Ledger stores build entries.
type Ledger interface {
	// Record appends e as the next version of e.Dataset and returns the
	// stored entry.
	Record(ctx context.Context, e Entry) (Entry, error)

	// Latest returns the newest entry of dataset. ok is false if there is none.
	Latest(ctx context.Context, dataset string) (e Entry, ok bool, err error)
}

// Memory is an in-memory Ledger.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]Entry
}

// NewMemory creates an empty Memory ledger.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]Entry)}
}

// Record implements Ledger.
func (m *Memory) Record(ctx context.Context, e Entry) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e.Version = uint64(len(m.entries[e.Dataset])) + 1
	if e.BuiltAt.IsZero() {
		e.BuiltAt = time.Now().UTC()
	}
	m.entries[e.Dataset] = append(m.entries[e.Dataset], e)
	return e, nil
}

// Latest implements Ledger.
func (m *Memory) Latest(_ context.Context, dataset string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.entries[dataset]
	if len(h) == 0 {
		return Entry{}, false, nil
	}
	return h[len(h)-1], true, nil
}

// History returns every entry of dataset, oldest first.
func (m *Memory) History(dataset string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.entries[dataset])
}
