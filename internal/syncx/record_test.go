package syncx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord_Timestamps(t *testing.T) {
	const now = int64(9_999)

	t.Run("rfc3339 updatedAt", func(t *testing.T) {
		in, err := ParseRecord(map[string]any{
			"id":        "J1",
			"updatedAt": "2024-05-01T12:00:00Z",
		}, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1714564800000), in.UpdatedAtMs)
	})

	t.Run("numeric epoch updatedAt", func(t *testing.T) {
		in, err := ParseRecord(map[string]any{
			"id":        "J1",
			"updatedAt": float64(1714564800000),
		}, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1714564800000), in.UpdatedAtMs)
	})

	t.Run("missing updatedAt falls back to now", func(t *testing.T) {
		in, err := ParseRecord(map[string]any{"id": "J1"}, now)
		require.NoError(t, err)
		assert.Equal(t, now, in.UpdatedAtMs)
	})

	t.Run("createdAt optional", func(t *testing.T) {
		in, err := ParseRecord(map[string]any{"id": "J1"}, now)
		require.NoError(t, err)
		assert.Zero(t, in.CreatedAtMs)

		in, err = ParseRecord(map[string]any{"id": "J1", "createdAt": float64(123)}, now)
		require.NoError(t, err)
		assert.Equal(t, int64(123), in.CreatedAtMs)
	})

	t.Run("deletedAt marks tombstone", func(t *testing.T) {
		in, err := ParseRecord(map[string]any{
			"id":        "J1",
			"deletedAt": "2024-05-01T12:00:00Z",
		}, now)
		require.NoError(t, err)
		require.NotNil(t, in.DeletedAtMs)
		assert.Equal(t, int64(1714564800000), *in.DeletedAtMs)
	})
}

func TestParseRecord_MissingID(t *testing.T) {
	_, err := ParseRecord(map[string]any{"kmTotal": float64(100)}, 1)
	assert.Error(t, err)

	_, err = ParseRecord(map[string]any{"id": 42}, 1)
	assert.Error(t, err)
}

func TestParseRecord_PayloadStripsMetadata(t *testing.T) {
	in, err := ParseRecord(map[string]any{
		"id":        "E1",
		"ownerId":   "someone-else",
		"userId":    "someone-else",
		"updatedAt": float64(1000),
		"createdAt": float64(500),
		"deletedAt": nil,
		"amount":    float64(50),
		"category":  "Manutencao",
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"amount":   float64(50),
		"category": "Manutencao",
	}, in.Payload)
}

func TestParseTimeToMs(t *testing.T) {
	ms, ok := ParseTimeToMs("2024-05-01T12:00:00Z")
	assert.True(t, ok)
	assert.Equal(t, int64(1714564800000), ms)

	ms, ok = ParseTimeToMs("2024-05-01T12:00:00.250Z")
	assert.True(t, ok)
	assert.Equal(t, int64(1714564800250), ms)

	ms, ok = ParseTimeToMs("1714564800000")
	assert.True(t, ok)
	assert.Equal(t, int64(1714564800000), ms)

	_, ok = ParseTimeToMs("")
	assert.False(t, ok)

	_, ok = ParseTimeToMs("yesterday")
	assert.False(t, ok)
}
