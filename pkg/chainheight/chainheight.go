package chainheight

import (
	"context"
	"sync/atomic"

	chainPoller "github.com/Layr-Labs/chain-indexer/pkg/chainPollers"
	"github.com/Layr-Labs/chain-indexer/pkg/clients/ethereum"
	"go.uber.org/zap"
)

// ISource supplies the current block height. The distributor reads it on
// every claim and sweep attempt; reads must be cheap and non-blocking.
type ISource interface {
	CurrentHeight() uint64
}

// Tracker adapts a chain-indexer block feed into an ISource. It implements
// chainPoller.IBlockHandler and remembers the highest finalized block
// number seen. Heights never move backwards; we index finalized blocks
// only, so there are no reorgs to unwind.
type Tracker struct {
	height atomic.Uint64
	logger *zap.Logger
}

var _ chainPoller.IBlockHandler = (*Tracker)(nil)
var _ ISource = (*Tracker)(nil)

func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{logger: logger}
}

// CurrentHeight returns the highest block number observed so far.
func (t *Tracker) CurrentHeight() uint64 {
	return t.height.Load()
}

func (t *Tracker) HandleBlock(ctx context.Context, block *ethereum.EthereumBlock) error {
	number := block.Number.Value()

	for {
		current := t.height.Load()
		if number <= current {
			return nil
		}
		if t.height.CompareAndSwap(current, number) {
			t.logger.Sugar().Debugf("Height tracker advanced to block %d", number)
			return nil
		}
	}
}

func (t *Tracker) HandleLog(ctx context.Context, logWithBlock *chainPoller.LogWithBlock) error {
	// only block numbers matter here
	return nil
}

func (t *Tracker) HandleReorgBlock(ctx context.Context, blockNumber uint64) {
	// finalized blocks only, so no reorgs
}

// Manual is a settable height source for tests and offline tooling.
type Manual struct {
	height atomic.Uint64
}

var _ ISource = (*Manual)(nil)

func NewManual(height uint64) *Manual {
	m := &Manual{}
	m.height.Store(height)
	return m
}

func (m *Manual) CurrentHeight() uint64 {
	return m.height.Load()
}

// SetHeight moves the source to an absolute height.
func (m *Manual) SetHeight(height uint64) {
	m.height.Store(height)
}

// Advance moves the source forward by n blocks.
func (m *Manual) Advance(n uint64) {
	m.height.Add(n)
}
