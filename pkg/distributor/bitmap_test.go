package distributor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitmapSetAndGet(t *testing.T) {
	b := newClaimedBitmap(200)

	for _, index := range []uint64{0, 1, 63, 64, 127, 200} {
		set, inRange := b.isSet(index)
		require.True(t, inRange)
		require.False(t, set)

		b.set(index)

		set, inRange = b.isSet(index)
		require.True(t, inRange)
		require.True(t, set)
	}

	// Neighbors are untouched
	set, inRange := b.isSet(2)
	require.True(t, inRange)
	require.False(t, set)
}

func TestBitmapOutOfRange(t *testing.T) {
	b := newClaimedBitmap(63) // one word, indices 0..63

	_, inRange := b.isSet(63)
	require.True(t, inRange)

	_, inRange = b.isSet(64)
	require.False(t, inRange)
}

func TestBitmapWordPacking(t *testing.T) {
	b := newClaimedBitmap(127)

	b.set(0)
	b.set(3)
	b.set(64)

	word, ok := b.word(0)
	require.True(t, ok)
	require.Equal(t, uint64(0b1001), word)

	word, ok = b.word(1)
	require.True(t, ok)
	require.Equal(t, uint64(1), word)

	_, ok = b.word(2)
	require.False(t, ok)
}

func TestBitmapClearRollsBack(t *testing.T) {
	b := newClaimedBitmap(10)

	b.set(5)
	b.clear(5)

	set, _ := b.isSet(5)
	require.False(t, set)
}

func TestBitmapSnapshotRestore(t *testing.T) {
	b := newClaimedBitmap(127)
	b.set(1)
	b.set(100)

	snap := b.snapshot()

	other := newClaimedBitmap(127)
	require.NoError(t, other.restore(snap))

	set, _ := other.isSet(1)
	require.True(t, set)
	set, _ = other.isSet(100)
	require.True(t, set)
	set, _ = other.isSet(2)
	require.False(t, set)

	// Snapshot is a copy, not a view
	b.set(2)
	require.Zero(t, snap[0]&0b100)

	// Shape mismatch is rejected
	require.Error(t, other.restore([]uint64{0}))
}
