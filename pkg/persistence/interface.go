package persistence

import "time"

// ClaimState is a snapshot of one distribution's mutable ledger state: the
// packed claimed bitmap and whether the residual pool has been swept. The
// merkle root ties a snapshot to its distribution; a distributor refuses to
// restore a snapshot taken under a different root.
type ClaimState struct {
	// MerkleRoot is the hex-encoded root of the distribution this snapshot
	// belongs to.
	MerkleRoot string `json:"merkleRoot"`

	// ClaimedWords is the packed claimed bitmap, one bit per entry index,
	// 64 indices per word.
	ClaimedWords []uint64 `json:"claimedWords"`

	// Swept records whether the residual balance has been returned to the
	// owner.
	Swept bool `json:"swept"`

	// UpdatedAt is the Unix timestamp of the last snapshot write.
	UpdatedAt int64 `json:"updatedAt"`
}

// Clone returns a deep copy of the snapshot.
func (s *ClaimState) Clone() *ClaimState {
	if s == nil {
		return nil
	}

	words := make([]uint64, len(s.ClaimedWords))
	copy(words, s.ClaimedWords)

	return &ClaimState{
		MerkleRoot:   s.MerkleRoot,
		ClaimedWords: words,
		Swept:        s.Swept,
		UpdatedAt:    s.UpdatedAt,
	}
}

// Touch stamps the snapshot with the current time.
func (s *ClaimState) Touch() {
	s.UpdatedAt = time.Now().Unix()
}

// IClaimPersistence defines the interface for persisting distribution claim
// state across restarts. All implementations must be thread-safe as the
// distributor snapshots after every committed mutation.
//
// The interface supports:
// - Claim state snapshots (save, load)
// - Lifecycle management (close, health check)
type IClaimPersistence interface {
	// SaveClaimState persists a claim state snapshot, overwriting any
	// previous snapshot for the same distribution.
	SaveClaimState(state *ClaimState) error

	// LoadClaimState retrieves the last snapshot.
	// Returns nil if no snapshot exists (first run), error only on storage
	// failure.
	LoadClaimState() (*ClaimState, error)

	// Close cleanly shuts down the persistence layer.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations should return errors.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	// Returns nil if healthy, error describing the problem if not.
	HealthCheck() error
}
