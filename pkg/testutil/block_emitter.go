package testutil

import (
	"context"
	"sync"
	"time"

	chainPoller "github.com/Layr-Labs/chain-indexer/pkg/chainPollers"
	"github.com/Layr-Labs/chain-indexer/pkg/clients/ethereum"
	"go.uber.org/zap"
)

// BlockEmitter feeds synthetic finalized blocks to block handlers without
// polling a chain. Tests drive the distribution deadline by emitting
// blocks at chosen heights.
type BlockEmitter struct {
	handlers     []chainPoller.IBlockHandler
	logger       *zap.Logger
	currentBlock uint64
	mu           sync.Mutex
}

// NewBlockEmitter creates an emitter broadcasting to the given handlers.
func NewBlockEmitter(handlers []chainPoller.IBlockHandler, logger *zap.Logger) *BlockEmitter {
	return &BlockEmitter{
		handlers: handlers,
		logger:   logger,
	}
}

// EmitBlockAtHeight broadcasts a block with the given number to all
// handlers.
func (e *BlockEmitter) EmitBlockAtHeight(height uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.currentBlock = height

	block := &ethereum.EthereumBlock{
		Number:    ethereum.EthereumQuantity(height),
		Timestamp: ethereum.EthereumQuantity(time.Now().Unix()),
	}

	e.logger.Sugar().Debugf("BlockEmitter emitting block %d to %d handlers", height, len(e.handlers))

	for i, handler := range e.handlers {
		if err := handler.HandleBlock(context.Background(), block); err != nil {
			e.logger.Sugar().Warnf("Failed to send block %d to handler %d: %v", height, i, err)
		}
	}

	return nil
}

// EmitNextBlock broadcasts the block after the last emitted one.
func (e *BlockEmitter) EmitNextBlock() error {
	e.mu.Lock()
	next := e.currentBlock + 1
	e.mu.Unlock()

	return e.EmitBlockAtHeight(next)
}

// CurrentBlock returns the number of the last emitted block.
func (e *BlockEmitter) CurrentBlock() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentBlock
}
