package memory

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignDelegation produces the (v, r, s) delegation authorization for a
// ledger's signing domain. Claimants run this off-band; the resulting
// signature travels with the claim and is verified by the ledger, never by
// the distributor.
func SignDelegation(key *ecdsa.PrivateKey, ledger *Ledger, delegatee common.Address, nonce, expiry *big.Int) (uint8, [32]byte, [32]byte, error) {
	digest := ledger.DelegationDigest(delegatee, nonce, expiry)

	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return 0, [32]byte{}, [32]byte{}, fmt.Errorf("failed to sign delegation digest: %w", err)
	}

	var r, s [32]byte
	copy(r[:], sig[0:32])
	copy(s[:], sig[32:64])
	v := sig[64] + 27

	return v, r, s, nil
}
