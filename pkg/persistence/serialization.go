package persistence

import (
	"encoding/json"
	"fmt"
)

// MarshalClaimState serializes a ClaimState to JSON bytes.
func MarshalClaimState(state *ClaimState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("cannot marshal nil ClaimState")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ClaimState to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalClaimState deserializes a ClaimState from JSON bytes.
func UnmarshalClaimState(data []byte) (*ClaimState, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var state ClaimState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to ClaimState: %w", err)
	}

	return &state, nil
}
