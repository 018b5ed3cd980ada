package store

import "context"

// Kind identifies one of the syncable entity families.
type Kind string

const (
	KindVehicle      Kind = "vehicle"
	KindJourney      Kind = "journey"
	KindFuelPurchase Kind = "fuelPurchase"
	KindExpense      Kind = "expense"
)

// Kinds returns all entity kinds in merge-processing order.
// Vehicles come first so a single batch that creates a vehicle plus
// its journeys and expenses lands the vehicle before its dependents.
func Kinds() []Kind {
	return []Kind{KindVehicle, KindJourney, KindFuelPurchase, KindExpense}
}

// Row is the stored representation of a syncable record: the sync
// metadata as typed columns, the domain fields as an opaque payload.
type Row struct {
	ID          string
	OwnerID     string
	CreatedAtMs int64
	UpdatedAtMs int64
	DeletedAtMs *int64 // soft-delete tombstone, nil when active
	Payload     map[string]any
}

// Deleted reports whether the row carries a soft-delete tombstone.
func (r Row) Deleted() bool {
	return r.DeletedAtMs != nil
}

// Tx is the transactional view of the store used by the merge engine.
// All lookups and writes are scoped to a single owner; a record id
// stored under a different owner is invisible through Find.
type Tx interface {
	// Find returns the row for (kind, ownerID, id), or nil when absent.
	Find(ctx context.Context, kind Kind, ownerID, id string) (*Row, error)
	Insert(ctx context.Context, kind Kind, row Row) error
	Update(ctx context.Context, kind Kind, row Row) error

	// Savepoint runs fn inside a nested transaction scope. When fn
	// fails only its own writes are rolled back; the enclosing
	// transaction stays usable.
	Savepoint(ctx context.Context, fn func(Tx) error) error
}

// Store is transactional access to the four entity tables.
type Store interface {
	// InTx runs fn inside one transaction and commits iff fn returns nil.
	InTx(ctx context.Context, fn func(Tx) error) error

	// MaxUpdatedAt returns the greatest updated_at_ms among the owner's
	// rows of the given kind. ok is false when the owner has no rows.
	// Soft-deleted rows count: a deletion is itself an update.
	MaxUpdatedAt(ctx context.Context, kind Kind, ownerID string) (ms int64, ok bool, err error)

	// ListActive returns every non-soft-deleted row of the kind owned
	// by ownerID.
	ListActive(ctx context.Context, kind Kind, ownerID string) ([]Row, error)

	// ListChangedSince returns every row (tombstones included) whose
	// updated_at_ms is strictly greater than sinceMs.
	ListChangedSince(ctx context.Context, kind Kind, ownerID string, sinceMs int64) ([]Row, error)
}
