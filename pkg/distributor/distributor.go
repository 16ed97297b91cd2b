package distributor

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/chainheight"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/logger"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/token"
)

// Claimed is the observable event emitted for every successful claim.
type Claimed struct {
	Index   uint64
	Account common.Address
	Amount  *big.Int
}

// Config carries the distribution-wide parameters fixed at construction.
// None of them have a mutation API afterwards.
type Config struct {
	// Token is the external token collaborator holding the pool balance.
	Token token.IToken

	// MerkleRoot is the 32-byte digest committing to the full entry set.
	MerkleRoot [32]byte

	// StartingHeight is the block height the distribution opened at.
	StartingHeight uint64

	// MaxBlocks is the distribution window; claims fail and sweeps succeed
	// from height StartingHeight+MaxBlocks onward.
	MaxBlocks uint64

	// Owner receives the residual pool balance on sweep.
	Owner common.Address

	// MaxIndex is the highest entry index committed to the tree; it sizes
	// the claimed bitmap.
	MaxIndex uint64

	// Heights supplies the current block height.
	Heights chainheight.ISource

	// Logger is optional; a default is created if nil.
	Logger *zap.Logger

	// Persistence is optional. When set, claim state is snapshotted after
	// every committed mutation and restored at construction.
	Persistence persistence.IClaimPersistence

	// Events is an optional sink invoked (under the distribution lock) for
	// every successful claim.
	Events func(Claimed)
}

// Validate checks the configuration for construction-time errors.
func (c *Config) Validate() error {
	var allErrors field.ErrorList

	if c.Token == nil {
		allErrors = append(allErrors, field.Required(field.NewPath("token"), "token collaborator is required"))
	}
	if c.Heights == nil {
		allErrors = append(allErrors, field.Required(field.NewPath("heights"), "height source is required"))
	}
	if c.MerkleRoot == ([32]byte{}) {
		allErrors = append(allErrors, field.Invalid(field.NewPath("merkleRoot"), c.MerkleRoot, "merkle root cannot be zero"))
	}
	if c.MaxBlocks == 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("maxBlocks"), c.MaxBlocks, "distribution window cannot be zero blocks"))
	}
	if c.Owner == (common.Address{}) {
		allErrors = append(allErrors, field.Required(field.NewPath("owner"), "sweep owner is required"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// Distributor is the claim state machine for one token distribution: it
// verifies membership proofs against the committed root, tracks paid
// indices in a packed bitmap, and gates the post-deadline sweep.
//
// Every mutating operation runs as a single all-or-nothing unit behind one
// mutex; concurrent claims for the same index race at the bitmap and
// exactly one wins.
type Distributor struct {
	token          token.IToken
	merkleRoot     [32]byte
	startingHeight uint64
	maxBlocks      uint64
	owner          common.Address
	heights        chainheight.ISource
	logger         *zap.Logger
	store          persistence.IClaimPersistence
	events         func(Claimed)

	mu      sync.Mutex
	claimed *claimedBitmap
	swept   bool
}

// New constructs a distributor from an immutable configuration record.
// If a persistence layer is configured and holds a snapshot for the same
// merkle root, the claimed bitmap and swept flag are restored from it.
func New(cfg *Config) (*Distributor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("distributor config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid distributor config: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		var err error
		log, err = logger.NewLogger(&logger.LoggerConfig{Debug: false})
		if err != nil {
			return nil, fmt.Errorf("failed to create default logger: %w", err)
		}
	}

	d := &Distributor{
		token:          cfg.Token,
		merkleRoot:     cfg.MerkleRoot,
		startingHeight: cfg.StartingHeight,
		maxBlocks:      cfg.MaxBlocks,
		owner:          cfg.Owner,
		heights:        cfg.Heights,
		logger:         log,
		store:          cfg.Persistence,
		events:         cfg.Events,
		claimed:        newClaimedBitmap(cfg.MaxIndex),
	}

	if d.store != nil {
		if err := d.restore(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// restore loads the last claim snapshot, refusing one taken under a
// different root.
func (d *Distributor) restore() error {
	state, err := d.store.LoadClaimState()
	if err != nil {
		return fmt.Errorf("failed to load claim snapshot: %w", err)
	}
	if state == nil {
		return nil // first run
	}

	if state.MerkleRoot != common.Hash(d.merkleRoot).Hex() {
		return fmt.Errorf("claim snapshot belongs to root %s, distribution root is %s",
			state.MerkleRoot, common.Hash(d.merkleRoot).Hex())
	}

	if err := d.claimed.restore(state.ClaimedWords); err != nil {
		return fmt.Errorf("failed to restore claimed bitmap: %w", err)
	}
	d.swept = state.Swept

	d.logger.Sugar().Infow("Restored claim state snapshot",
		"merkle_root", state.MerkleRoot,
		"swept", state.Swept,
	)

	return nil
}

// Token returns the token collaborator.
func (d *Distributor) Token() token.IToken { return d.token }

// MerkleRoot returns the committed root digest.
func (d *Distributor) MerkleRoot() [32]byte { return d.merkleRoot }

// StartingHeight returns the height the distribution opened at.
func (d *Distributor) StartingHeight() uint64 { return d.startingHeight }

// MaxBlocks returns the distribution window in blocks.
func (d *Distributor) MaxBlocks() uint64 { return d.maxBlocks }

// IsClaimed reports whether the entry at index has been paid. Indices
// outside the distribution range read as unclaimed.
func (d *Distributor) IsClaimed(index uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, _ := d.claimed.isSet(index)
	return set
}

// ClaimedWord returns the packed bitmap word at the given word offset.
func (d *Distributor) ClaimedWord(offset uint64) (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.claimed.word(offset)
}

// Swept reports whether the residual balance has been swept to the owner.
func (d *Distributor) Swept() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.swept
}

// deadlineHeight is the first height at which claims fail and sweep
// succeeds.
func (d *Distributor) deadlineHeight() uint64 {
	return d.startingHeight + d.maxBlocks
}

// Claim pays out one entry: it verifies (index, account, amount, proof)
// against the committed root, marks the index claimed, and transfers the
// amount to the account. The whole operation commits or aborts as a unit;
// a second claim for the same index deterministically fails with
// ErrAlreadyClaimed.
func (d *Distributor) Claim(index uint64, account common.Address, amount *big.Int, proof [][32]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.validateClaimLocked(index, account, amount, proof); err != nil {
		return err
	}
	return d.commitClaimLocked(index, account, amount)
}

// DelegateAndClaim bundles a signature-authorized delegation on the token
// with a claim in one serialized operation, so a recipient can receive
// tokens and configure voting delegation without a second transaction.
//
// The claim is fully validated (deadline, bitmap, proof, pool balance)
// before the delegation is submitted, so a doomed claim never leaves a
// stray delegation behind; a rejected delegation aborts before any claim
// state changes.
func (d *Distributor) DelegateAndClaim(
	delegatee common.Address,
	nonce *big.Int,
	expiry *big.Int,
	v uint8,
	r [32]byte,
	s [32]byte,
	index uint64,
	account common.Address,
	amount *big.Int,
	proof [][32]byte,
) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.validateClaimLocked(index, account, amount, proof); err != nil {
		return err
	}
	if d.token.Balance().Cmp(amount) < 0 {
		claimFailuresTotal.WithLabelValues(reasonInsufficientBalance).Inc()
		return errors.Wrapf(ErrInsufficientPoolBalance,
			"pool holds %s, claim needs %s", d.token.Balance().String(), amount.String())
	}

	if err := d.token.DelegateBySig(delegatee, nonce, expiry, v, r, s); err != nil {
		claimFailuresTotal.WithLabelValues(reasonDelegationRejected).Inc()
		return fmt.Errorf("token rejected delegation: %w", err)
	}
	delegationsTotal.Inc()

	return d.commitClaimLocked(index, account, amount)
}

// validateClaimLocked runs the claim precondition checks without mutating
// anything. Caller must hold d.mu.
func (d *Distributor) validateClaimLocked(index uint64, account common.Address, amount *big.Int, proof [][32]byte) error {
	height := d.heights.CurrentHeight()
	if height >= d.deadlineHeight() {
		claimFailuresTotal.WithLabelValues(reasonDistributionEnded).Inc()
		return errors.Wrapf(ErrDistributionEnded,
			"height %d is at or past deadline %d", height, d.deadlineHeight())
	}

	set, inRange := d.claimed.isSet(index)
	if !inRange {
		claimFailuresTotal.WithLabelValues(reasonUnknownIndex).Inc()
		return errors.Wrapf(ErrUnknownIndex, "index %d", index)
	}
	if set {
		claimFailuresTotal.WithLabelValues(reasonAlreadyClaimed).Inc()
		return errors.Wrapf(ErrAlreadyClaimed, "index %d", index)
	}

	if !merkle.VerifyProof(index, account, amount, proof, d.merkleRoot) {
		claimFailuresTotal.WithLabelValues(reasonInvalidProof).Inc()
		return errors.Wrapf(ErrInvalidProof, "index %d, account %s", index, account.Hex())
	}

	return nil
}

// commitClaimLocked performs the claim state transition after validation
// has passed. Caller must hold d.mu.
func (d *Distributor) commitClaimLocked(index uint64, account common.Address, amount *big.Int) error {
	// Effects before interaction: mark the bit, then transfer. The mutex
	// makes the pair atomic; a failed transfer rolls the bit back before
	// the lock is released, so no caller ever observes a half-committed
	// claim.
	d.claimed.set(index)

	if err := d.token.Transfer(account, amount); err != nil {
		d.claimed.clear(index)

		if errors.Is(err, token.ErrInsufficientBalance) {
			claimFailuresTotal.WithLabelValues(reasonInsufficientBalance).Inc()
			return errors.Wrapf(ErrInsufficientPoolBalance, "claim for index %d: %v", index, err)
		}
		claimFailuresTotal.WithLabelValues(reasonTransferFailed).Inc()
		return fmt.Errorf("token transfer for index %d failed: %w", index, err)
	}

	d.snapshotLocked()
	claimsTotal.Inc()
	paid, _ := new(big.Float).SetInt(amount).Float64()
	tokensClaimedTotal.Add(paid)

	d.logger.Sugar().Infow("Claimed",
		"index", index,
		"account", account.Hex(),
		"amount", amount.String(),
	)
	if d.events != nil {
		d.events(Claimed{Index: index, Account: account, Amount: new(big.Int).Set(amount)})
	}

	return nil
}

// Sweep transfers the entire remaining pool balance to the owner once the
// deadline has passed. Sweeping an already-empty pool is a no-op success,
// so retries are harmless. Returns the amount swept.
func (d *Distributor) Sweep() (*big.Int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	height := d.heights.CurrentHeight()
	if height < d.deadlineHeight() {
		return nil, errors.Wrapf(ErrDropNotEnded,
			"height %d is before deadline %d", height, d.deadlineHeight())
	}

	remaining := d.token.Balance()
	if remaining.Sign() > 0 {
		if err := d.token.Transfer(d.owner, remaining); err != nil {
			return nil, fmt.Errorf("sweep transfer to owner %s failed: %w", d.owner.Hex(), err)
		}
	}

	d.swept = true
	d.snapshotLocked()
	sweepsTotal.Inc()

	d.logger.Sugar().Infow("Swept residual pool balance",
		"owner", d.owner.Hex(),
		"amount", remaining.String(),
	)

	return remaining, nil
}

// snapshotLocked mirrors the claim state to the persistence layer. The
// transfer has already committed, so a snapshot failure is logged rather
// than propagated; the next committed mutation retries it. Caller must
// hold d.mu.
func (d *Distributor) snapshotLocked() {
	if d.store == nil {
		return
	}

	state := &persistence.ClaimState{
		MerkleRoot:   common.Hash(d.merkleRoot).Hex(),
		ClaimedWords: d.claimed.snapshot(),
		Swept:        d.swept,
	}
	state.Touch()

	if err := d.store.SaveClaimState(state); err != nil {
		d.logger.Sugar().Warnw("Failed to persist claim state snapshot", "error", err)
	}
}
