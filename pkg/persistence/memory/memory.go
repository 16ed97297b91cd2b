package memory

import (
	"fmt"
	"sync"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
)

// MemoryPersistence is an in-memory implementation of IClaimPersistence.
// Snapshots are lost when the process exits, so this is only suitable for
// tests and ephemeral distributions.
//
// Thread-safe using sync.RWMutex for concurrent access.
// Deep copies snapshots to prevent external mutation.
type MemoryPersistence struct {
	mu     sync.RWMutex
	state  *persistence.ClaimState
	closed bool
}

var _ persistence.IClaimPersistence = (*MemoryPersistence)(nil)

// NewMemoryPersistence creates a new in-memory persistence layer.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{}
}

// SaveClaimState stores a deep copy of the snapshot.
func (m *MemoryPersistence) SaveClaimState(state *persistence.ClaimState) error {
	if state == nil {
		return fmt.Errorf("cannot save nil ClaimState")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	m.state = state.Clone()
	return nil
}

// LoadClaimState returns a deep copy of the last snapshot, or nil if none
// has been saved.
func (m *MemoryPersistence) LoadClaimState() (*persistence.ClaimState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	return m.state.Clone(), nil
}

// Close shuts down the persistence layer.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck verifies the persistence layer is operational.
func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	return nil
}
