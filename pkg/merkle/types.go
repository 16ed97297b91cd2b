package merkle

import "github.com/Layr-Labs/merkle-distributor-go/pkg/types"

// DistributionTree is a binary merkle tree committing to a full entry set.
// The tree uses keccak256 hashing with sorted-pair interior nodes for
// Solidity compatibility.
type DistributionTree struct {
	// Root is the merkle root hash committing to every entry
	Root [32]byte

	// entries holds the committed entries in canonical (ascending index) order
	entries []*types.Entry

	// positions maps entry index to leaf position in the canonical ordering
	positions map[uint64]int

	// levels stores all tree levels for proof generation
	// levels[0] = leaves, levels[len-1] = root
	levels [][][32]byte
}

// Entries returns the committed entries in canonical order.
func (dt *DistributionTree) Entries() []*types.Entry {
	return dt.entries
}

// NumLeaves returns the number of committed entries.
func (dt *DistributionTree) NumLeaves() int {
	return len(dt.entries)
}
