package syncx

import (
	"context"
	"testing"

	"github.com/rotalog/rotalog-api/internal/store"
	"github.com/rotalog/rotalog-api/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPayloadRow(t *testing.T, mem *memory.Memory, kind store.Kind, owner, id string, updatedMs int64, deleted bool, payload map[string]any) {
	t.Helper()
	row := store.Row{
		ID:          id,
		OwnerID:     owner,
		CreatedAtMs: updatedMs,
		UpdatedAtMs: updatedMs,
		Payload:     payload,
	}
	if deleted {
		row.DeletedAtMs = &updatedMs
	}
	err := mem.InTx(context.Background(), func(tx store.Tx) error {
		return tx.Insert(context.Background(), kind, row)
	})
	require.NoError(t, err)
}

func TestInitial_ExcludesDeleted(t *testing.T) {
	mem := memory.New()
	seedPayloadRow(t, mem, store.KindVehicle, "alice", "V1", 100, false, map[string]any{"plate": "ABC1D23"})
	seedPayloadRow(t, mem, store.KindVehicle, "alice", "V2", 200, true, map[string]any{"plate": "XYZ9Z99"})
	seedPayloadRow(t, mem, store.KindJourney, "alice", "J1", 150, false, map[string]any{"kmTotal": float64(12)})

	d := NewDownloadService(mem)
	d.now = func() int64 { return 5_000 }

	data, err := d.Initial(context.Background(), "alice")
	require.NoError(t, err)

	require.Len(t, data.Vehicles, 1)
	assert.Equal(t, "V1", data.Vehicles[0]["id"])
	assert.Equal(t, "ABC1D23", data.Vehicles[0]["plate"])
	require.Len(t, data.Journeys, 1)
	assert.Empty(t, data.FuelPurchases)
	assert.Empty(t, data.Expenses)

	assert.Equal(t, SyncTypeInitial, data.Metadata.SyncType)
	assert.Empty(t, data.Metadata.LastSync)
	assert.Equal(t, int64(5_000), data.Metadata.Timestamp)
	assert.Equal(t, 2, data.Metadata.TotalRecords)
}

func TestIncremental_StrictlyGreaterAndIncludesDeleted(t *testing.T) {
	mem := memory.New()
	seedPayloadRow(t, mem, store.KindExpense, "alice", "E1", 100, false, map[string]any{"amount": float64(1)})
	seedPayloadRow(t, mem, store.KindExpense, "alice", "E2", 200, false, map[string]any{"amount": float64(2)})
	seedPayloadRow(t, mem, store.KindExpense, "alice", "E3", 300, true, map[string]any{"amount": float64(3)})

	d := NewDownloadService(mem)
	d.now = func() int64 { return 5_000 }

	data, err := d.Incremental(context.Background(), "alice", 200)
	require.NoError(t, err)

	// E1 (100) and E2 (exactly at the cursor) are excluded; the
	// tombstone E3 qualifies and must propagate.
	require.Len(t, data.Expenses, 1)
	assert.Equal(t, "E3", data.Expenses[0]["id"])
	assert.Contains(t, data.Expenses[0], "deletedAt")

	assert.Equal(t, SyncTypeIncremental, data.Metadata.SyncType)
	assert.Equal(t, RFC3339(200), data.Metadata.LastSync)
	assert.Equal(t, 1, data.Metadata.TotalRecords)
}

func TestDownload_ScopedToOwner(t *testing.T) {
	mem := memory.New()
	seedPayloadRow(t, mem, store.KindJourney, "alice", "J1", 100, false, map[string]any{"kmTotal": float64(1)})
	seedPayloadRow(t, mem, store.KindJourney, "bob", "J2", 100, false, map[string]any{"kmTotal": float64(2)})

	d := NewDownloadService(mem)

	data, err := d.Initial(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, data.Journeys, 1)
	assert.Equal(t, "J1", data.Journeys[0]["id"])

	delta, err := d.Incremental(context.Background(), "bob", 0)
	require.NoError(t, err)
	require.Len(t, delta.Journeys, 1)
	assert.Equal(t, "J2", delta.Journeys[0]["id"])
}

func TestRenderRow_MetadataFields(t *testing.T) {
	del := int64(3_000)
	out := renderRow(store.Row{
		ID:          "V1",
		OwnerID:     "alice",
		CreatedAtMs: 1_000,
		UpdatedAtMs: 2_000,
		DeletedAtMs: &del,
		Payload:     map[string]any{"plate": "ABC1D23"},
	})

	assert.Equal(t, "V1", out["id"])
	assert.Equal(t, RFC3339(1_000), out["createdAt"])
	assert.Equal(t, RFC3339(2_000), out["updatedAt"])
	assert.Equal(t, RFC3339(3_000), out["deletedAt"])
	assert.Equal(t, "ABC1D23", out["plate"])
	assert.NotContains(t, out, "ownerId")
}
