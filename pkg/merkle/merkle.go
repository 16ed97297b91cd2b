package merkle

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

var (
	// ErrDuplicateIndex is returned when two entries share an index.
	ErrDuplicateIndex = errors.New("duplicate entry index")

	// ErrUnknownIndex is returned when a proof is requested for an index
	// that was never committed to the tree.
	ErrUnknownIndex = errors.New("unknown entry index")
)

// EncodeEntry produces the frozen byte encoding of one distribution entry:
// 8-byte big-endian index || 20-byte account || 32-byte big-endian amount.
// The encoding is a protocol detail shared with on-chain verifiers, so it
// must be byte-identical across every tool that builds or checks proofs.
func EncodeEntry(index uint64, account common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("entry amount must be a non-negative integer")
	}
	if amount.BitLen() > 256 {
		return nil, fmt.Errorf("entry amount %s does not fit in 256 bits", amount.String())
	}

	data := make([]byte, 8+20+32)
	for i := 0; i < 8; i++ {
		data[7-i] = byte(index >> (8 * i))
	}
	copy(data[8:28], account.Bytes())
	amount.FillBytes(data[28:60])

	return data, nil
}

// LeafHash computes the keccak256 leaf digest of one entry's encoding.
func LeafHash(index uint64, account common.Address, amount *big.Int) ([32]byte, error) {
	data, err := EncodeEntry(index, account, amount)
	if err != nil {
		return [32]byte{}, err
	}
	return [32]byte(crypto.Keccak256Hash(data)), nil
}

// BuildDistributionTree creates a binary merkle tree over a full entry set.
// Entries are sorted by ascending index before hashing, so permuting the
// input list yields the same root. Interior nodes hash the lexicographically
// sorted pair of children, and a lone node at the end of an odd level is
// promoted unchanged to the next level. Both rules are frozen protocol
// details: the verifier reproduces them bit-for-bit.
func BuildDistributionTree(entries []*types.Entry) (*DistributionTree, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("cannot build distribution tree from empty entry list")
	}

	sorted := types.SortEntriesByIndex(entries)

	// Hash all leaves, rejecting duplicate indices
	leaves := make([][32]byte, len(sorted))
	positions := make(map[uint64]int, len(sorted))
	for i, entry := range sorted {
		if _, seen := positions[entry.Index]; seen {
			return nil, errors.Wrapf(ErrDuplicateIndex, "index %d", entry.Index)
		}
		positions[entry.Index] = i

		leaf, err := LeafHash(entry.Index, entry.Account, entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to hash leaf for index %d: %w", entry.Index, err)
		}
		leaves[i] = leaf
	}

	// Build tree levels bottom-up
	levels := make([][][32]byte, 0)
	levels = append(levels, leaves)

	currentLevel := leaves
	for len(currentLevel) > 1 {
		nextLevel := make([][32]byte, 0, (len(currentLevel)+1)/2)

		for i := 0; i < len(currentLevel); i += 2 {
			if i+1 == len(currentLevel) {
				// Lone node: promote unchanged to the next level
				nextLevel = append(nextLevel, currentLevel[i])
				continue
			}
			nextLevel = append(nextLevel, hashPair(currentLevel[i], currentLevel[i+1]))
		}

		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	return &DistributionTree{
		Root:      currentLevel[0],
		entries:   sorted,
		positions: positions,
		levels:    levels,
	}, nil
}

// ProofFor returns the sibling path for the entry with the given index.
// A promoted lone node contributes no proof step, so proof lengths can
// differ between leaves of the same tree.
func (dt *DistributionTree) ProofFor(index uint64) ([][32]byte, error) {
	pos, ok := dt.positions[index]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownIndex, "index %d", index)
	}

	proof := make([][32]byte, 0, len(dt.levels)-1)

	// Traverse from leaf to root, collecting sibling hashes
	for level := 0; level < len(dt.levels)-1; level++ {
		currentLevel := dt.levels[level]

		siblingPos := pos ^ 1
		if siblingPos < len(currentLevel) {
			proof = append(proof, currentLevel[siblingPos])
		}
		// No sibling means the node was promoted; nothing to record

		pos = pos / 2
	}

	return proof, nil
}

// VerifyProof recomputes the leaf digest for (index, account, amount), folds
// the proof against it with the same sorted-pair rule the builder uses, and
// compares the result to root. Only exact equality verifies; any tampering
// with index, account, amount, or the proof itself fails.
func VerifyProof(index uint64, account common.Address, amount *big.Int, proof [][32]byte, root [32]byte) bool {
	currentHash, err := LeafHash(index, account, amount)
	if err != nil {
		return false
	}

	for _, sibling := range proof {
		currentHash = hashPair(currentHash, sibling)
	}

	return currentHash == root
}

// hashPair computes keccak256(sort(a, b)) for two 32-byte hashes. Sorting
// the pair before hashing makes the fold orientation-free, so proofs carry
// no left/right bookkeeping.
func hashPair(a, b [32]byte) [32]byte {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}

	data := make([]byte, 64)
	copy(data[0:32], a[:])
	copy(data[32:64], b[:])

	return [32]byte(crypto.Keccak256Hash(data))
}
