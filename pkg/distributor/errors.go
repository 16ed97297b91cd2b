package distributor

import "github.com/pkg/errors"

// Claim and sweep failure kinds. Callers match with errors.Is; every
// failure is a local call failure, never a crash, and nothing is retried
// automatically.
var (
	// ErrInvalidProof: the proof does not fold to the committed root. Also
	// covers wrong account/amount/index combinations, since those feed the
	// leaf digest.
	ErrInvalidProof = errors.New("merkle proof does not verify against the committed root")

	// ErrAlreadyClaimed: the claimed bit for the index is already set.
	ErrAlreadyClaimed = errors.New("entry has already been claimed")

	// ErrDistributionEnded: the current height is at or past the deadline.
	ErrDistributionEnded = errors.New("distribution period has ended")

	// ErrDropNotEnded: sweep attempted before the deadline.
	ErrDropNotEnded = errors.New("distribution period has not ended yet")

	// ErrInsufficientPoolBalance: the token pool cannot cover the claim,
	// surfaced from the token collaborator.
	ErrInsufficientPoolBalance = errors.New("pool balance cannot cover claim amount")

	// ErrUnknownIndex: the index lies outside the distribution's committed
	// index range.
	ErrUnknownIndex = errors.New("entry index outside the distribution range")
)
