package syncx

import "github.com/rotalog/rotalog-api/internal/store"

// Decision is the three-way outcome of conflict resolution.
type Decision int

const (
	// DecisionInsert: no stored row exists, persist the incoming record.
	DecisionInsert Decision = iota
	// DecisionUpdate: the incoming record is at least as new, overwrite.
	DecisionUpdate
	// DecisionReject: the stored row is newer, discard the incoming
	// record and report a server_newer conflict.
	DecisionReject
)

// Resolve applies last-write-wins on client-reported modification
// timestamps. The comparison is whole-record; ties favor the incoming
// value. A stored row whose timestamp was never set always loses.
func Resolve(existing *store.Row, incomingMs int64) Decision {
	if existing == nil {
		return DecisionInsert
	}
	if existing.UpdatedAtMs > 0 && incomingMs < existing.UpdatedAtMs {
		return DecisionReject
	}
	return DecisionUpdate
}
