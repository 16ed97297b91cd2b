package badger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
)

func newTestPersistence(t *testing.T) *BadgerPersistence {
	t.Helper()

	p, err := NewBadgerPersistence(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	return p
}

func TestSaveAndLoadClaimState(t *testing.T) {
	p := newTestPersistence(t)

	loaded, err := p.LoadClaimState()
	require.NoError(t, err)
	require.Nil(t, loaded, "first run should have no snapshot")

	state := &persistence.ClaimState{
		MerkleRoot:   "0xroot",
		ClaimedWords: []uint64{0xdead, 0xbeef},
		Swept:        true,
		UpdatedAt:    1700000000,
	}
	require.NoError(t, p.SaveClaimState(state))

	loaded, err = p.LoadClaimState()
	require.NoError(t, err)
	require.Equal(t, state, loaded)
}

func TestSnapshotOverwrite(t *testing.T) {
	p := newTestPersistence(t)

	first := &persistence.ClaimState{MerkleRoot: "0xroot", ClaimedWords: []uint64{1}}
	second := &persistence.ClaimState{MerkleRoot: "0xroot", ClaimedWords: []uint64{3}}

	require.NoError(t, p.SaveClaimState(first))
	require.NoError(t, p.SaveClaimState(second))

	loaded, err := p.LoadClaimState()
	require.NoError(t, err)
	require.Equal(t, second, loaded)
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	p, err := NewBadgerPersistence(dir, zap.NewNop())
	require.NoError(t, err)

	state := &persistence.ClaimState{MerkleRoot: "0xroot", ClaimedWords: []uint64{0b1010}}
	require.NoError(t, p.SaveClaimState(state))
	require.NoError(t, p.Close())

	reopened, err := NewBadgerPersistence(dir, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadClaimState()
	require.NoError(t, err)
	require.Equal(t, state, loaded)
}

func TestHealthCheckAndClose(t *testing.T) {
	p := newTestPersistence(t)
	require.NoError(t, p.HealthCheck())

	require.NoError(t, p.Close())
	require.Error(t, p.HealthCheck())
	require.Error(t, p.SaveClaimState(&persistence.ClaimState{}))

	// Close is idempotent
	require.NoError(t, p.Close())
}
