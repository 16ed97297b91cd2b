package artifact

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/types"
)

// ClaimEntry is the per-recipient slice of a distribution artifact: the
// entry index, the committed amount, and the sibling path proving the
// recipient's (index, account, amount) triple against the root.
type ClaimEntry struct {
	Index  uint64        `json:"index"`
	Amount *hexutil.Big  `json:"amount"`
	Proof  []common.Hash `json:"proof"`
}

// DistributionArtifact is the off-line contract between the tree builder
// and claimants. It carries the committed root, the total pool funding
// requirement, and one claim record per recipient account. Amounts are
// hex-encoded so arbitrary-precision values survive JSON round-trips.
type DistributionArtifact struct {
	ID         uuid.UUID                     `json:"id"`
	MerkleRoot common.Hash                   `json:"merkleRoot"`
	TokenTotal *hexutil.Big                  `json:"tokenTotal"`
	Claims     map[common.Address]ClaimEntry `json:"claims"`
}

// Build assembles the distribution artifact for a committed tree. Each
// account appears at most once in an artifact; committing two entries to
// the same account is a construction error.
func Build(tree *merkle.DistributionTree) (*DistributionArtifact, error) {
	entries := tree.Entries()

	claims := make(map[common.Address]ClaimEntry, len(entries))
	total := new(big.Int)

	for _, entry := range entries {
		if _, exists := claims[entry.Account]; exists {
			return nil, fmt.Errorf("account %s appears in more than one entry", entry.Account.Hex())
		}

		proof, err := tree.ProofFor(entry.Index)
		if err != nil {
			return nil, fmt.Errorf("failed to generate proof for index %d: %w", entry.Index, err)
		}

		proofHashes := make([]common.Hash, len(proof))
		for i, h := range proof {
			proofHashes[i] = common.Hash(h)
		}

		claims[entry.Account] = ClaimEntry{
			Index:  entry.Index,
			Amount: (*hexutil.Big)(new(big.Int).Set(entry.Amount)),
			Proof:  proofHashes,
		}
		total.Add(total, entry.Amount)
	}

	return &DistributionArtifact{
		ID:         uuid.New(),
		MerkleRoot: common.Hash(tree.Root),
		TokenTotal: (*hexutil.Big)(total),
		Claims:     claims,
	}, nil
}

// Verify self-checks the artifact: every claim's proof must fold to the
// committed root and the claim amounts must sum to TokenTotal. Builders run
// this before distributing proofs; claimants can run it on receipt.
func (a *DistributionArtifact) Verify() error {
	if a.TokenTotal == nil {
		return fmt.Errorf("artifact has no token total")
	}

	total := new(big.Int)
	for account, claim := range a.Claims {
		if claim.Amount == nil {
			return fmt.Errorf("claim for %s has no amount", account.Hex())
		}

		proof := make([][32]byte, len(claim.Proof))
		for i, h := range claim.Proof {
			proof[i] = [32]byte(h)
		}

		if !merkle.VerifyProof(claim.Index, account, (*big.Int)(claim.Amount), proof, [32]byte(a.MerkleRoot)) {
			return fmt.Errorf("proof for account %s (index %d) does not verify against root %s",
				account.Hex(), claim.Index, a.MerkleRoot.Hex())
		}

		total.Add(total, (*big.Int)(claim.Amount))
	}

	if total.Cmp((*big.Int)(a.TokenTotal)) != 0 {
		return fmt.Errorf("claim amounts sum to %s but artifact declares %s",
			total.String(), (*big.Int)(a.TokenTotal).String())
	}

	return nil
}

// Marshal serializes the artifact to indented JSON for out-of-band delivery.
func (a *DistributionArtifact) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal distribution artifact: %w", err)
	}
	return data, nil
}

// Unmarshal parses a distribution artifact from JSON.
func Unmarshal(data []byte) (*DistributionArtifact, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty artifact data")
	}

	var a DistributionArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal distribution artifact: %w", err)
	}

	return &a, nil
}

// EntriesFromArtifact reconstructs the entry list committed by an artifact.
// Useful for cross-checking a received artifact against an independently
// rebuilt tree.
func EntriesFromArtifact(a *DistributionArtifact) []*types.Entry {
	entries := make([]*types.Entry, 0, len(a.Claims))
	for account, claim := range a.Claims {
		entries = append(entries, &types.Entry{
			Index:   claim.Index,
			Account: account,
			Amount:  (*big.Int)(claim.Amount),
		})
	}
	return types.SortEntriesByIndex(entries)
}
