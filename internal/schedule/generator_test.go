package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlots(t *testing.T) {
	t.Run("exact fit", func(t *testing.T) {
		ranges, err := GenerateSlots("09:00", "10:00", 30)
		require.NoError(t, err)
		assert.Equal(t, []SlotRange{
			{StartMin: 540, EndMin: 570},
			{StartMin: 570, EndMin: 600},
		}, ranges)
	})

	t.Run("remainder dropped", func(t *testing.T) {
		ranges, err := GenerateSlots("09:00", "09:40", 30)
		require.NoError(t, err)
		assert.Equal(t, []SlotRange{{StartMin: 540, EndMin: 570}}, ranges)
	})

	t.Run("window shorter than duration", func(t *testing.T) {
		ranges, err := GenerateSlots("09:00", "09:20", 30)
		require.NoError(t, err)
		assert.Empty(t, ranges)
	})

	t.Run("inverted window", func(t *testing.T) {
		ranges, err := GenerateSlots("17:00", "09:00", 30)
		require.NoError(t, err)
		assert.Empty(t, ranges)
	})

	t.Run("zero duration", func(t *testing.T) {
		ranges, err := GenerateSlots("09:00", "17:00", 0)
		require.NoError(t, err)
		assert.Empty(t, ranges)
	})

	t.Run("negative duration", func(t *testing.T) {
		ranges, err := GenerateSlots("09:00", "17:00", -15)
		require.NoError(t, err)
		assert.Empty(t, ranges)
	})

	t.Run("malformed start", func(t *testing.T) {
		_, err := GenerateSlots("9am", "17:00", 30)
		assert.ErrorIs(t, err, ErrMalformedTime)
	})

	t.Run("malformed end", func(t *testing.T) {
		_, err := GenerateSlots("09:00", "25:00", 30)
		assert.ErrorIs(t, err, ErrMalformedTime)
	})
}

func TestGenerateWindows(t *testing.T) {
	windows := []Window{
		{Start: "09:00", End: "10:00"},
		{Start: "14:00", End: "15:30"},
	}
	ranges, err := GenerateWindows(windows, 30)
	require.NoError(t, err)
	assert.Equal(t, []SlotRange{
		{StartMin: 540, EndMin: 570},
		{StartMin: 570, EndMin: 600},
		{StartMin: 840, EndMin: 870},
		{StartMin: 870, EndMin: 900},
		{StartMin: 900, EndMin: 930},
	}, ranges)

	t.Run("error in any window aborts", func(t *testing.T) {
		_, err := GenerateWindows([]Window{{Start: "09:00", End: "bogus"}}, 30)
		assert.ErrorIs(t, err, ErrMalformedTime)
	})

	t.Run("no windows", func(t *testing.T) {
		ranges, err := GenerateWindows(nil, 30)
		require.NoError(t, err)
		assert.Empty(t, ranges)
	})
}
