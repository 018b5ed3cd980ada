package syncx

import "github.com/rotalog/rotalog-api/internal/store"

// Envelope is the body of an upload request: the offline batch plus
// client-side metadata. Both parts must be present; the metadata's
// fields are informational and are not validated against the records.
type Envelope struct {
	Data     *BatchData `json:"data"`
	Metadata *BatchMeta `json:"metadata"`
}

// BatchData carries zero-or-more records per entity kind. Records are
// raw JSON objects; domain fields pass through the server opaquely.
type BatchData struct {
	Vehicles      []map[string]any `json:"vehicles,omitempty"`
	Journeys      []map[string]any `json:"journeys,omitempty"`
	FuelPurchases []map[string]any `json:"fuelPurchases,omitempty"`
	Expenses      []map[string]any `json:"expenses,omitempty"`
}

// ByKind returns the submitted records for one kind in submission order.
func (d *BatchData) ByKind(kind store.Kind) []map[string]any {
	switch kind {
	case store.KindVehicle:
		return d.Vehicles
	case store.KindJourney:
		return d.Journeys
	case store.KindFuelPurchase:
		return d.FuelPurchases
	case store.KindExpense:
		return d.Expenses
	}
	return nil
}

// BatchMeta is client-reported submission metadata.
type BatchMeta struct {
	Timestamp int64  `json:"lastSyncTimestamp"`
	DeviceID  string `json:"deviceId,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ConflictReason classifies why a record was not applied.
type ConflictReason string

const (
	// ReasonServerNewer: the stored row has a later modification
	// timestamp; the incoming record was discarded.
	ReasonServerNewer ConflictReason = "server_newer"
	// ReasonProcessingError: the record itself failed to merge
	// (malformed fields, row-level constraint violation).
	ReasonProcessingError ConflictReason = "processing_error"
)

// ConflictEntry reports one record that was not applied.
type ConflictEntry struct {
	Kind   string         `json:"type"`
	ID     string         `json:"id"`
	Reason ConflictReason `json:"reason"`
}

// Outcome is the merge report for one uploaded batch: accepted
// inserts+updates per kind, plus the records that were not applied.
type Outcome struct {
	Vehicles      int             `json:"vehicles"`
	Journeys      int             `json:"journeys"`
	FuelPurchases int             `json:"fuelPurchases"`
	Expenses      int             `json:"expenses"`
	Conflicts     []ConflictEntry `json:"conflicts"`
}

func newOutcome() Outcome {
	return Outcome{Conflicts: make([]ConflictEntry, 0)}
}

func (o *Outcome) accept(kind store.Kind) {
	switch kind {
	case store.KindVehicle:
		o.Vehicles++
	case store.KindJourney:
		o.Journeys++
	case store.KindFuelPurchase:
		o.FuelPurchases++
	case store.KindExpense:
		o.Expenses++
	}
}

func (o *Outcome) conflict(kind store.Kind, id string, reason ConflictReason) {
	o.Conflicts = append(o.Conflicts, ConflictEntry{Kind: string(kind), ID: id, Reason: reason})
}

// Accepted is the total number of applied records across kinds.
func (o *Outcome) Accepted() int {
	return o.Vehicles + o.Journeys + o.FuelPurchases + o.Expenses
}
