package syncx

import "errors"

// Incoming is the sync metadata parsed out of one client record,
// together with the remaining domain payload.
type Incoming struct {
	ID          string
	UpdatedAtMs int64
	CreatedAtMs int64  // 0 when the client omitted createdAt
	DeletedAtMs *int64 // set when the record is a soft delete
	Payload     map[string]any
}

var errMissingID = errors.New("missing or invalid id")

// metadata fields live in typed columns; everything else is payload.
var metaFields = map[string]struct{}{
	"id":        {},
	"ownerId":   {},
	"userId":    {},
	"createdAt": {},
	"updatedAt": {},
	"deletedAt": {},
}

// ParseRecord extracts sync metadata from a raw client record.
// updatedAt falls back to nowMs when absent or unparsable, which makes
// a timestamp-less record win ties against the stored row (the policy
// favors the incoming value on equal timestamps anyway).
// Ownership is never read from the payload; it comes from the session.
func ParseRecord(item map[string]any, nowMs int64) (Incoming, error) {
	var in Incoming

	id, _ := item["id"].(string)
	if id == "" {
		return in, errMissingID
	}
	in.ID = id

	in.UpdatedAtMs = nowMs
	if ms, ok := epochMs(item["updatedAt"]); ok {
		in.UpdatedAtMs = ms
	}
	if ms, ok := epochMs(item["createdAt"]); ok {
		in.CreatedAtMs = ms
	}
	if ms, ok := epochMs(item["deletedAt"]); ok {
		in.DeletedAtMs = &ms
	}

	in.Payload = make(map[string]any, len(item))
	for k, v := range item {
		if _, meta := metaFields[k]; meta {
			continue
		}
		in.Payload[k] = v
	}
	return in, nil
}

// recordID best-effort extracts an id for conflict reporting from a
// record that failed to parse.
func recordID(item map[string]any) string {
	id, _ := item["id"].(string)
	return id
}
