package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/rotalog/rotalog-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(owner, id string, updatedMs int64) store.Row {
	return store.Row{
		ID:          id,
		OwnerID:     owner,
		CreatedAtMs: updatedMs,
		UpdatedAtMs: updatedMs,
		Payload:     map[string]any{},
	}
}

func TestInTx_RollbackOnError(t *testing.T) {
	mem := New()
	ctx := context.Background()

	err := mem.InTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Insert(ctx, store.KindVehicle, row("alice", "V1", 100)))
		return errors.New("boom")
	})
	require.Error(t, err)

	_, ok := mem.Get(store.KindVehicle, "alice", "V1")
	assert.False(t, ok)
}

func TestSavepoint_RollsBackOnlyItsOwnWrites(t *testing.T) {
	mem := New()
	ctx := context.Background()

	err := mem.InTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Insert(ctx, store.KindVehicle, row("alice", "V1", 100)))

		spErr := tx.Savepoint(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Insert(ctx, store.KindVehicle, row("alice", "V2", 200)))
			return errors.New("record failed")
		})
		require.Error(t, spErr)

		// V1 still visible inside the transaction, V2 rolled back.
		got, err := tx.Find(ctx, store.KindVehicle, "alice", "V1")
		require.NoError(t, err)
		assert.NotNil(t, got)

		got, err = tx.Find(ctx, store.KindVehicle, "alice", "V2")
		require.NoError(t, err)
		assert.Nil(t, got)

		return nil
	})
	require.NoError(t, err)

	_, ok := mem.Get(store.KindVehicle, "alice", "V1")
	assert.True(t, ok)
	_, ok = mem.Get(store.KindVehicle, "alice", "V2")
	assert.False(t, ok)
}

func TestFind_ScopedToOwner(t *testing.T) {
	mem := New()
	ctx := context.Background()

	require.NoError(t, mem.InTx(ctx, func(tx store.Tx) error {
		return tx.Insert(ctx, store.KindExpense, row("alice", "E1", 100))
	}))

	require.NoError(t, mem.InTx(ctx, func(tx store.Tx) error {
		got, err := tx.Find(ctx, store.KindExpense, "bob", "E1")
		require.NoError(t, err)
		assert.Nil(t, got)
		return nil
	}))
}

func TestListChangedSince_StrictlyGreater(t *testing.T) {
	mem := New()
	ctx := context.Background()

	require.NoError(t, mem.InTx(ctx, func(tx store.Tx) error {
		if err := tx.Insert(ctx, store.KindJourney, row("alice", "J1", 100)); err != nil {
			return err
		}
		return tx.Insert(ctx, store.KindJourney, row("alice", "J2", 200))
	}))

	rows, err := mem.ListChangedSince(ctx, store.KindJourney, "alice", 100)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "J2", rows[0].ID)
}

func TestReadErr_FailsQueries(t *testing.T) {
	mem := New()
	ctx := context.Background()
	mem.ReadErr = errors.New("connection refused")

	_, _, err := mem.MaxUpdatedAt(ctx, store.KindJourney, "alice")
	assert.Error(t, err)

	_, err = mem.ListActive(ctx, store.KindJourney, "alice")
	assert.Error(t, err)

	_, err = mem.ListChangedSince(ctx, store.KindJourney, "alice", 0)
	assert.Error(t, err)
}
