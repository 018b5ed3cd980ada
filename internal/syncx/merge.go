package syncx

import (
	"context"

	"github.com/rotalog/rotalog-api/internal/store"
	"github.com/rs/zerolog/log"
)

// Engine merges uploaded batches into the store. One batch runs in one
// transaction; each record gets its own savepoint so a bad record
// rolls back only itself and the rest of the batch still commits.
type Engine struct {
	store store.Store
	now   func() int64
}

func NewEngine(s store.Store) *Engine {
	return &Engine{store: s, now: NowMs}
}

// Merge applies env for the given owner and returns the per-record
// report. A non-nil error means the transaction as a whole failed and
// nothing is guaranteed to have been applied; per-record failures are
// reported inside the Outcome instead.
func (e *Engine) Merge(ctx context.Context, ownerID string, env Envelope) (Outcome, error) {
	out := newOutcome()

	err := e.store.InTx(ctx, func(tx store.Tx) error {
		for _, kind := range store.Kinds() {
			for _, item := range env.Data.ByKind(kind) {
				e.mergeOne(ctx, tx, ownerID, kind, item, &out)
			}
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	log.Info().
		Str("userId", ownerID).
		Int("accepted", out.Accepted()).
		Int("conflicts", len(out.Conflicts)).
		Msg("offline batch merged")
	return out, nil
}

func (e *Engine) mergeOne(ctx context.Context, tx store.Tx, ownerID string, kind store.Kind, item map[string]any, out *Outcome) {
	now := e.now()

	rec, err := ParseRecord(item, now)
	if err != nil {
		log.Warn().Err(err).Str("userId", ownerID).Str("kind", string(kind)).
			Msg("record failed to parse")
		out.conflict(kind, recordID(item), ReasonProcessingError)
		return
	}

	var rejected bool
	err = tx.Savepoint(ctx, func(tx store.Tx) error {
		existing, err := tx.Find(ctx, kind, ownerID, rec.ID)
		if err != nil {
			return err
		}

		switch Resolve(existing, rec.UpdatedAtMs) {
		case DecisionReject:
			rejected = true
			return nil

		case DecisionInsert:
			created := rec.CreatedAtMs
			if created == 0 {
				created = now
			}
			return tx.Insert(ctx, kind, store.Row{
				ID:          rec.ID,
				OwnerID:     ownerID,
				CreatedAtMs: created,
				UpdatedAtMs: now,
				DeletedAtMs: rec.DeletedAtMs,
				Payload:     rec.Payload,
			})

		default: // DecisionUpdate
			// Identity, ownership and creation time are immutable;
			// updated_at_ms becomes server-apply time.
			return tx.Update(ctx, kind, store.Row{
				ID:          rec.ID,
				OwnerID:     ownerID,
				CreatedAtMs: existing.CreatedAtMs,
				UpdatedAtMs: now,
				DeletedAtMs: rec.DeletedAtMs,
				Payload:     rec.Payload,
			})
		}
	})
	if err != nil {
		log.Error().Err(err).Str("userId", ownerID).Str("kind", string(kind)).Str("id", rec.ID).
			Msg("record failed to merge")
		out.conflict(kind, rec.ID, ReasonProcessingError)
		return
	}

	if rejected {
		out.conflict(kind, rec.ID, ReasonServerNewer)
		return
	}
	out.accept(kind)
}
