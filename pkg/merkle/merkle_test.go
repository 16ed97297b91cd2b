package merkle

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// createTestEntries creates n test entries with unique indices and accounts
func createTestEntries(n int) []*types.Entry {
	entries := make([]*types.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = &types.Entry{
			Index:   uint64(i),
			Account: common.BigToAddress(big.NewInt(int64(i + 1))), // Start from 1 to avoid zero address
			Amount:  big.NewInt(int64(100 + i)),
		}
	}
	return entries
}

func TestEncodeEntry(t *testing.T) {
	account := common.HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")

	data, err := EncodeEntry(0x0102030405060708, account, big.NewInt(0x64))
	require.NoError(t, err)
	require.Len(t, data, 60)

	// 8-byte big-endian index
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, data[0:8])
	// 20-byte account
	require.Equal(t, account.Bytes(), data[8:28])
	// 32-byte big-endian amount, left padded
	expectedAmount := make([]byte, 32)
	expectedAmount[31] = 0x64
	require.Equal(t, expectedAmount, data[28:60])
}

func TestEncodeEntryRejectsBadAmounts(t *testing.T) {
	account := common.BigToAddress(big.NewInt(1))

	t.Run("nil amount", func(t *testing.T) {
		_, err := EncodeEntry(0, account, nil)
		require.Error(t, err)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := EncodeEntry(0, account, big.NewInt(-1))
		require.Error(t, err)
	})

	t.Run("amount over 256 bits", func(t *testing.T) {
		tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
		_, err := EncodeEntry(0, account, tooBig)
		require.Error(t, err)
	})
}

// TestBuildDistributionTree tests tree construction with various entry counts
func TestBuildDistributionTree(t *testing.T) {
	testCases := []struct {
		name       string
		numEntries int
	}{
		{"Single entry", 1},
		{"Two entries", 2},
		{"Three entries", 3},
		{"Four entries (power of 2)", 4},
		{"Seven entries", 7},
		{"Eight entries (power of 2)", 8},
		{"Fifteen entries", 15},
		{"Sixteen entries (power of 2)", 16},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries := createTestEntries(tc.numEntries)
			tree, err := BuildDistributionTree(entries)
			require.NoError(t, err)
			require.NotNil(t, tree)

			require.Equal(t, tc.numEntries, tree.NumLeaves())
			require.NotEqual(t, [32]byte{}, tree.Root)

			// Every committed entry must verify against the root
			for _, entry := range entries {
				proof, err := tree.ProofFor(entry.Index)
				require.NoError(t, err)

				valid := VerifyProof(entry.Index, entry.Account, entry.Amount, proof, tree.Root)
				require.True(t, valid, "Proof for index %d should be valid", entry.Index)
			}
		})
	}
}

func TestBuildDistributionTreeEmpty(t *testing.T) {
	tree, err := BuildDistributionTree([]*types.Entry{})
	require.Error(t, err)
	require.Nil(t, tree)
	require.Contains(t, err.Error(), "empty")
}

func TestBuildDistributionTreeDuplicateIndex(t *testing.T) {
	entries := createTestEntries(4)
	entries[3].Index = entries[1].Index

	tree, err := BuildDistributionTree(entries)
	require.Error(t, err)
	require.Nil(t, tree)
	require.True(t, errors.Is(err, ErrDuplicateIndex))
}

// TestRootIsOrderIndependent verifies that permuting the input entry list
// does not change the committed root.
func TestRootIsOrderIndependent(t *testing.T) {
	entries := createTestEntries(13)
	tree, err := BuildDistributionTree(entries)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]*types.Entry, len(entries))
		copy(shuffled, entries)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		shuffledTree, err := BuildDistributionTree(shuffled)
		require.NoError(t, err)
		require.Equal(t, tree.Root, shuffledTree.Root)
	}
}

func TestProofForUnknownIndex(t *testing.T) {
	entries := createTestEntries(4)
	tree, err := BuildDistributionTree(entries)
	require.NoError(t, err)

	proof, err := tree.ProofFor(99)
	require.Error(t, err)
	require.Nil(t, proof)
	require.True(t, errors.Is(err, ErrUnknownIndex))
}

// TestVerifyProofRejectsTampering checks that a real proof cannot be reused
// for any (index, account, amount) triple other than the committed one.
func TestVerifyProofRejectsTampering(t *testing.T) {
	entries := createTestEntries(8)
	tree, err := BuildDistributionTree(entries)
	require.NoError(t, err)

	target := entries[3]
	proof, err := tree.ProofFor(target.Index)
	require.NoError(t, err)

	t.Run("Original triple verifies", func(t *testing.T) {
		require.True(t, VerifyProof(target.Index, target.Account, target.Amount, proof, tree.Root))
	})

	t.Run("Wrong index", func(t *testing.T) {
		require.False(t, VerifyProof(target.Index+1, target.Account, target.Amount, proof, tree.Root))
	})

	t.Run("Wrong account", func(t *testing.T) {
		other := common.BigToAddress(big.NewInt(9999))
		require.False(t, VerifyProof(target.Index, other, target.Amount, proof, tree.Root))
	})

	t.Run("Wrong amount", func(t *testing.T) {
		inflated := new(big.Int).Add(target.Amount, big.NewInt(1))
		require.False(t, VerifyProof(target.Index, target.Account, inflated, proof, tree.Root))
	})

	t.Run("Proof reused for another leaf", func(t *testing.T) {
		other := entries[5]
		require.False(t, VerifyProof(other.Index, other.Account, other.Amount, proof, tree.Root))
	})

	t.Run("Wrong root", func(t *testing.T) {
		var wrongRoot [32]byte
		wrongRoot[0] = 0xff
		require.False(t, VerifyProof(target.Index, target.Account, target.Amount, proof, wrongRoot))
	})

	t.Run("Truncated proof", func(t *testing.T) {
		require.False(t, VerifyProof(target.Index, target.Account, target.Amount, proof[:len(proof)-1], tree.Root))
	})

	t.Run("Overlong amount rejected", func(t *testing.T) {
		tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
		require.False(t, VerifyProof(target.Index, target.Account, tooBig, proof, tree.Root))
	})
}

// TestLargeTreeSampledProofs exercises a 100,000-leaf tree, spot-checking
// proofs spread across the index space against the single computed root.
func TestLargeTreeSampledProofs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large tree construction in short mode")
	}

	entries := createTestEntries(100_000)
	tree, err := BuildDistributionTree(entries)
	require.NoError(t, err)

	for _, index := range []uint64{0, 50_000, 90_000} {
		entry := entries[index]
		proof, err := tree.ProofFor(index)
		require.NoError(t, err)
		require.True(t, VerifyProof(entry.Index, entry.Account, entry.Amount, proof, tree.Root),
			"Proof for index %d should verify against the root", index)
	}
}
