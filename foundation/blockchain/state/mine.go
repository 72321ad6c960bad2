package state

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are not enough transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// MineNewBlock attempts to create a new block with a proper hash that can become
// the next block in the chain. The lock is not held while mining so the chain
// stays readable. If the tip changes in the meantime the block is rejected.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	// Are there enough transactions in the pool.
	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoTransactions
	}

	tip, err := s.RetrieveLatestBlock()
	if err != nil {
		return database.Block{}, err
	}

	block := database.NewBlock(tip.Header.Number+1, tip.Hash)
	for _, tx := range s.mempool.PickBest(int(s.genesis.TransPerBlock)) {
		if err := block.AddTransaction(tx); err != nil {
			return database.Block{}, err
		}
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]: trans[%d]", block.Header.Number, len(block.Trans))

	// Attempt to seal the block by solving the POW puzzle. This can be cancelled.
	t := time.Now()
	err = block.Mine(ctx, s.mineCfg)

	// Attempts are only known once a nonce has been found.
	var attempts uint64
	if err == nil {
		attempts = block.Header.Nonce + 1
	}
	s.metrics.ObserveMining(time.Since(t), attempts, err)

	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if err := s.AddBlock(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// AddBlock appends a sealed block to the chain and removes its transactions
// from the mempool.
func (s *State) AddBlock(block database.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: AddBlock: blk[%d]: started", block.Header.Number)
	defer s.evHandler("state: AddBlock: blk[%d]: completed", block.Header.Number)

	if err := s.chain.AddBlock(block); err != nil {
		s.evHandler("state: AddBlock: blk[%d]: REJECTED: %s", block.Header.Number, err)
		s.metrics.BlockRejected(rejectReason(err))
		return err
	}

	for _, tx := range block.Trans {
		s.evHandler("state: AddBlock: blk[%d]: tx[%s]: remove from mempool", block.Header.Number, tx)
		s.mempool.Delete(tx)
	}

	s.metrics.BlockAdded(s.chain.Length())
	s.metrics.MempoolSize(s.mempool.Count())

	return nil
}

// =============================================================================

// rejectReason maps a rejected block error to a metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, database.ErrPrevHashMismatch):
		return "prev_hash"
	case errors.Is(err, database.ErrHashMismatch):
		return "hash"
	case errors.Is(err, database.ErrEmptyChain):
		return "empty_chain"
	default:
		return "other"
	}
}
