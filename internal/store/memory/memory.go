// Package memory provides an in-memory Store used by tests. It mirrors
// the transactional semantics of the Postgres store closely enough for
// the merge engine: owner-scoped lookups, tombstones, and savepoints
// that roll back only their own writes.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rotalog/rotalog-api/internal/store"
)

type key struct {
	owner string
	id    string
}

// Memory is an in-memory implementation of store.Store.
type Memory struct {
	mu   sync.Mutex
	data map[store.Kind]map[key]store.Row

	// TxErr, when set, makes InTx fail before running its body. Used
	// to simulate total transaction failure (lost connectivity).
	TxErr error

	// ReadErr, when set, fails MaxUpdatedAt and the List queries. Used
	// to simulate read failures on the download and cursor paths.
	ReadErr error
}

func New() *Memory {
	return &Memory{data: make(map[store.Kind]map[key]store.Row)}
}

func (m *Memory) kind(k store.Kind) map[key]store.Row {
	if m.data[k] == nil {
		m.data[k] = make(map[key]store.Row)
	}
	return m.data[k]
}

func (m *Memory) InTx(ctx context.Context, fn func(store.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.TxErr != nil {
		return m.TxErr
	}

	tx := &memTx{base: m, staged: make(map[store.Kind]map[key]store.Row)}
	if err := fn(tx); err != nil {
		return err
	}
	for k, rows := range tx.staged {
		for kk, row := range rows {
			m.kind(k)[kk] = row
		}
	}
	return nil
}

func (m *Memory) MaxUpdatedAt(ctx context.Context, kind store.Kind, ownerID string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadErr != nil {
		return 0, false, m.ReadErr
	}

	var best int64
	found := false
	for k, row := range m.kind(kind) {
		if k.owner != ownerID {
			continue
		}
		found = true
		if row.UpdatedAtMs > best {
			best = row.UpdatedAtMs
		}
	}
	return best, found, nil
}

func (m *Memory) ListActive(ctx context.Context, kind store.Kind, ownerID string) ([]store.Row, error) {
	return m.list(kind, ownerID, func(r store.Row) bool { return !r.Deleted() })
}

func (m *Memory) ListChangedSince(ctx context.Context, kind store.Kind, ownerID string, sinceMs int64) ([]store.Row, error) {
	return m.list(kind, ownerID, func(r store.Row) bool { return r.UpdatedAtMs > sinceMs })
}

func (m *Memory) list(kind store.Kind, ownerID string, keep func(store.Row) bool) ([]store.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadErr != nil {
		return nil, m.ReadErr
	}

	out := make([]store.Row, 0)
	for k, row := range m.kind(kind) {
		if k.owner == ownerID && keep(row) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAtMs != out[j].UpdatedAtMs {
			return out[i].UpdatedAtMs < out[j].UpdatedAtMs
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Get returns a stored row directly, for test assertions.
func (m *Memory) Get(kind store.Kind, ownerID, id string) (store.Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.kind(kind)[key{owner: ownerID, id: id}]
	return row, ok
}

type memTx struct {
	base   *Memory
	staged map[store.Kind]map[key]store.Row
}

func (t *memTx) stagedKind(k store.Kind) map[key]store.Row {
	if t.staged[k] == nil {
		t.staged[k] = make(map[key]store.Row)
	}
	return t.staged[k]
}

func (t *memTx) Find(ctx context.Context, kind store.Kind, ownerID, id string) (*store.Row, error) {
	kk := key{owner: ownerID, id: id}
	if row, ok := t.stagedKind(kind)[kk]; ok {
		return &row, nil
	}
	if row, ok := t.base.kind(kind)[kk]; ok {
		return &row, nil
	}
	return nil, nil
}

func (t *memTx) Insert(ctx context.Context, kind store.Kind, row store.Row) error {
	existing, _ := t.Find(ctx, kind, row.OwnerID, row.ID)
	if existing != nil {
		return fmt.Errorf("memory: duplicate %s id %s", kind, row.ID)
	}
	t.stagedKind(kind)[key{owner: row.OwnerID, id: row.ID}] = row
	return nil
}

func (t *memTx) Update(ctx context.Context, kind store.Kind, row store.Row) error {
	existing, _ := t.Find(ctx, kind, row.OwnerID, row.ID)
	if existing == nil {
		return fmt.Errorf("memory: update of missing %s id %s", kind, row.ID)
	}
	t.stagedKind(kind)[key{owner: row.OwnerID, id: row.ID}] = row
	return nil
}

func (t *memTx) Savepoint(ctx context.Context, fn func(store.Tx) error) error {
	child := &memTx{base: t.base, staged: cloneStaged(t.staged)}
	if err := fn(child); err != nil {
		return err
	}
	t.staged = child.staged
	return nil
}

func cloneStaged(src map[store.Kind]map[key]store.Row) map[store.Kind]map[key]store.Row {
	out := make(map[store.Kind]map[key]store.Row, len(src))
	for k, rows := range src {
		cp := make(map[key]store.Row, len(rows))
		for kk, row := range rows {
			cp[kk] = row
		}
		out[k] = cp
	}
	return out
}
