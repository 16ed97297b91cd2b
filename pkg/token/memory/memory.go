package memory

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/token"
)

// Type hashes for the delegation signing scheme, matching the
// ERC-20-votes style digest layout.
var (
	domainTypeHash     = crypto.Keccak256Hash([]byte("EIP712Domain(string name,uint256 chainId)"))
	delegationTypeHash = crypto.Keccak256Hash([]byte("Delegation(address delegatee,uint256 nonce,uint256 expiry)"))
)

// Ledger is an in-memory fungible token ledger with signature-based
// delegation. It stands in for the external token collaborator in tests
// and local runs; all data is lost when the process exits.
//
// Thread-safe using sync.RWMutex for concurrent access.
type Ledger struct {
	mu sync.RWMutex

	// Signing domain
	name    string
	chainID *big.Int

	// Balance ledger: account -> balance
	balances map[common.Address]*big.Int

	// Delegation bookkeeping: signer -> delegatee, signer -> next nonce
	delegates map[common.Address]common.Address
	nonces    map[common.Address]*big.Int

	logger *zap.Logger
}

// NewLedger creates an empty in-memory token ledger. The name and chain ID
// feed the delegation signing domain, so signatures produced against one
// ledger do not replay against another.
func NewLedger(name string, chainID *big.Int, logger *zap.Logger) *Ledger {
	return &Ledger{
		name:      name,
		chainID:   new(big.Int).Set(chainID),
		balances:  make(map[common.Address]*big.Int),
		delegates: make(map[common.Address]common.Address),
		nonces:    make(map[common.Address]*big.Int),
		logger:    logger,
	}
}

// Mint credits amount to an account. Test funding helper; the distribution
// core never mints.
func (l *Ledger) Mint(to common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[to]
	if !ok {
		balance = new(big.Int)
		l.balances[to] = balance
	}
	balance.Add(balance, amount)
}

// BalanceOf returns a copy of an account's balance.
func (l *Ledger) BalanceOf(account common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	balance, ok := l.balances[account]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(balance)
}

// DelegateOf returns the recorded delegatee for a signer, if any.
func (l *Ledger) DelegateOf(signer common.Address) (common.Address, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	delegatee, ok := l.delegates[signer]
	return delegatee, ok
}

// NonceOf returns the next expected delegation nonce for a signer.
func (l *Ledger) NonceOf(signer common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	nonce, ok := l.nonces[signer]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(nonce)
}

// Bind returns a holder-bound token.IToken view of this ledger. The
// distributor binds its own pool address; Transfer and Balance then operate
// on that pool.
func (l *Ledger) Bind(holder common.Address) *Holding {
	return &Holding{ledger: l, holder: holder}
}

// DelegationDigest computes the signing digest for a delegation
// authorization against this ledger's domain.
func (l *Ledger) DelegationDigest(delegatee common.Address, nonce, expiry *big.Int) common.Hash {
	domainSeparator := crypto.Keccak256Hash(
		domainTypeHash.Bytes(),
		crypto.Keccak256Hash([]byte(l.name)).Bytes(),
		common.LeftPadBytes(l.chainID.Bytes(), 32),
	)
	structHash := crypto.Keccak256Hash(
		delegationTypeHash.Bytes(),
		common.LeftPadBytes(delegatee.Bytes(), 32),
		common.LeftPadBytes(nonce.Bytes(), 32),
		common.LeftPadBytes(expiry.Bytes(), 32),
	)
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator.Bytes(), structHash.Bytes())
}

// transfer moves amount between accounts under the ledger lock.
func (l *Ledger) transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("transfer amount must be a non-negative integer")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromBalance, ok := l.balances[from]
	if !ok || fromBalance.Cmp(amount) < 0 {
		return errors.Wrapf(token.ErrInsufficientBalance,
			"account %s holds %s, needs %s", from.Hex(), l.balanceLocked(from).String(), amount.String())
	}

	fromBalance.Sub(fromBalance, amount)

	toBalance, ok := l.balances[to]
	if !ok {
		toBalance = new(big.Int)
		l.balances[to] = toBalance
	}
	toBalance.Add(toBalance, amount)

	return nil
}

// balanceLocked reads a balance with the lock already held.
func (l *Ledger) balanceLocked(account common.Address) *big.Int {
	if balance, ok := l.balances[account]; ok {
		return balance
	}
	return new(big.Int)
}

// delegateBySig verifies an off-band delegation signature, consumes the
// signer's nonce, and records the delegation.
func (l *Ledger) delegateBySig(delegatee common.Address, nonce, expiry *big.Int, v uint8, r, s [32]byte) error {
	if nonce == nil || expiry == nil {
		return fmt.Errorf("delegation nonce and expiry are required")
	}
	if v != 27 && v != 28 {
		return fmt.Errorf("invalid delegation signature recovery id %d", v)
	}
	if expiry.Cmp(big.NewInt(time.Now().Unix())) < 0 {
		return fmt.Errorf("delegation signature expired at %s", expiry.String())
	}

	digest := l.DelegationDigest(delegatee, nonce, expiry)

	sig := make([]byte, 65)
	copy(sig[0:32], r[:])
	copy(sig[32:64], s[:])
	sig[64] = v - 27

	pubkey, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return fmt.Errorf("failed to recover delegation signer: %w", err)
	}
	signer := crypto.PubkeyToAddress(*pubkey)

	l.mu.Lock()
	defer l.mu.Unlock()

	expected, ok := l.nonces[signer]
	if !ok {
		expected = new(big.Int)
		l.nonces[signer] = expected
	}
	if expected.Cmp(nonce) != 0 {
		return fmt.Errorf("delegation nonce %s does not match expected %s for signer %s",
			nonce.String(), expected.String(), signer.Hex())
	}
	expected.Add(expected, big.NewInt(1))

	l.delegates[signer] = delegatee

	if l.logger != nil {
		l.logger.Sugar().Infow("Recorded delegation",
			"signer", signer.Hex(),
			"delegatee", delegatee.Hex(),
		)
	}

	return nil
}

// Holding is a holder-bound token.IToken view of a Ledger.
type Holding struct {
	ledger *Ledger
	holder common.Address
}

var _ token.IToken = (*Holding)(nil)

func (h *Holding) Transfer(to common.Address, amount *big.Int) error {
	return h.ledger.transfer(h.holder, to, amount)
}

func (h *Holding) DelegateBySig(delegatee common.Address, nonce *big.Int, expiry *big.Int, v uint8, r [32]byte, s [32]byte) error {
	return h.ledger.delegateBySig(delegatee, nonce, expiry, v, r, s)
}

func (h *Holding) Balance() *big.Int {
	return h.ledger.BalanceOf(h.holder)
}
