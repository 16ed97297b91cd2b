package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ErrInsufficientBalance is returned by Transfer when the caller's pool
// balance cannot cover the requested amount.
var ErrInsufficientBalance = errors.New("insufficient token balance")

// IToken is the external token collaborator the distributor depends on.
// It is a holder-bound view of some fungible token ledger: Transfer and
// Balance operate on the caller's own pool balance.
//
// Implementations must be thread-safe; the distributor may invoke them
// from concurrent claim attempts (serialized per distribution instance,
// but several distributions can share one token).
type IToken interface {
	// Transfer moves amount from the caller's pool balance to `to`.
	// Returns ErrInsufficientBalance when the pool cannot cover amount.
	Transfer(to common.Address, amount *big.Int) error

	// DelegateBySig submits an off-band signature authorizing `delegatee`
	// to vote with the signer's token balance. Signature verification and
	// nonce/expiry bookkeeping are entirely the token's concern.
	DelegateBySig(delegatee common.Address, nonce *big.Int, expiry *big.Int, v uint8, r [32]byte, s [32]byte) error

	// Balance returns the caller's remaining pool balance.
	Balance() *big.Int
}
