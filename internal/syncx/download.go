package syncx

import (
	"context"

	"github.com/rotalog/rotalog-api/internal/store"
)

const (
	SyncTypeInitial     = "initial"
	SyncTypeIncremental = "incremental"
)

// SyncData is the download envelope shared by both sync modes.
type SyncData struct {
	Vehicles      []map[string]any `json:"vehicles"`
	Journeys      []map[string]any `json:"journeys"`
	FuelPurchases []map[string]any `json:"fuelPurchases"`
	Expenses      []map[string]any `json:"expenses"`
	Metadata      SyncMeta         `json:"metadata"`
}

// SyncMeta describes what the download contains.
type SyncMeta struct {
	SyncType     string `json:"syncType"`
	LastSync     string `json:"lastSync,omitempty"`
	Timestamp    int64  `json:"timestamp"`
	TotalRecords int    `json:"totalRecords"`
}

func (d *SyncData) set(kind store.Kind, records []map[string]any) {
	switch kind {
	case store.KindVehicle:
		d.Vehicles = records
	case store.KindJourney:
		d.Journeys = records
	case store.KindFuelPurchase:
		d.FuelPurchases = records
	case store.KindExpense:
		d.Expenses = records
	}
}

// DownloadService serves full snapshots and incremental deltas, always
// scoped to the requesting owner.
type DownloadService struct {
	store store.Store
	now   func() int64
}

func NewDownloadService(s store.Store) *DownloadService {
	return &DownloadService{store: s, now: NowMs}
}

// Initial returns every active record of all kinds. Soft-deleted rows
// are omitted: a fresh client has nothing to delete.
func (d *DownloadService) Initial(ctx context.Context, ownerID string) (SyncData, error) {
	out := SyncData{}
	total := 0

	for _, kind := range store.Kinds() {
		rows, err := d.store.ListActive(ctx, kind, ownerID)
		if err != nil {
			return SyncData{}, err
		}
		out.set(kind, renderRows(rows))
		total += len(rows)
	}

	out.Metadata = SyncMeta{
		SyncType:     SyncTypeInitial,
		Timestamp:    d.now(),
		TotalRecords: total,
	}
	return out, nil
}

// Incremental returns every record changed strictly after sinceMs.
// Tombstones are included so deletions propagate to other devices.
func (d *DownloadService) Incremental(ctx context.Context, ownerID string, sinceMs int64) (SyncData, error) {
	out := SyncData{}
	total := 0

	for _, kind := range store.Kinds() {
		rows, err := d.store.ListChangedSince(ctx, kind, ownerID, sinceMs)
		if err != nil {
			return SyncData{}, err
		}
		out.set(kind, renderRows(rows))
		total += len(rows)
	}

	out.Metadata = SyncMeta{
		SyncType:     SyncTypeIncremental,
		LastSync:     RFC3339(sinceMs),
		Timestamp:    d.now(),
		TotalRecords: total,
	}
	return out, nil
}

func renderRows(rows []store.Row) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, renderRow(row))
	}
	return out
}

// renderRow rebuilds the wire representation: domain payload plus the
// sync metadata columns. Ownership is implied by the session and not
// echoed back.
func renderRow(row store.Row) map[string]any {
	out := make(map[string]any, len(row.Payload)+4)
	for k, v := range row.Payload {
		out[k] = v
	}
	out["id"] = row.ID
	out["createdAt"] = RFC3339(row.CreatedAtMs)
	out["updatedAt"] = RFC3339(row.UpdatedAtMs)
	if row.DeletedAtMs != nil {
		out["deletedAt"] = RFC3339(*row.DeletedAtMs)
	}
	return out
}
