package syncx

import (
	"context"

	"github.com/rotalog/rotalog-api/internal/store"
)

// CursorService computes the per-user sync cursor: the watermark a
// client should pass as lastSync on its next incremental download.
type CursorService struct {
	store store.Store
	now   func() int64
}

func NewCursorService(s store.Store) *CursorService {
	return &CursorService{store: s, now: NowMs}
}

// LastSync returns max(updated_at_ms) across all four kinds for the
// owner. Tombstones count: a deletion is an update and must move the
// watermark. An owner with no records at all gets the current server
// time, so an empty account reads as fully synced.
func (c *CursorService) LastSync(ctx context.Context, ownerID string) (int64, error) {
	var best int64
	found := false

	for _, kind := range store.Kinds() {
		ms, ok, err := c.store.MaxUpdatedAt(ctx, kind, ownerID)
		if err != nil {
			return 0, err
		}
		if ok {
			found = true
			if ms > best {
				best = ms
			}
		}
	}

	if !found {
		return c.now(), nil
	}
	return best, nil
}
