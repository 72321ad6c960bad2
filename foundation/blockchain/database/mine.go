package database

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// progressInterval is the number of attempts between progress events.
const progressInterval = 1_000_000

// MineConfig represents the parameters of a nonce search.
type MineConfig struct {
	Difficulty Difficulty
	MaxNonce   uint64 // Largest nonce tried, 0 means the full nonce space.
	Workers    int    // Number of goroutines searching, 1 or less is sequential.
	EvHandler  func(v string, args ...any)
}

// limit returns the largest nonce the search may try.
func (cfg MineConfig) limit() uint64 {
	if cfg.MaxNonce == 0 {
		return math.MaxUint64
	}
	return cfg.MaxNonce
}

// ev returns the configured event handler or one that discards events.
func (cfg MineConfig) ev() func(v string, args ...any) {
	if cfg.EvHandler == nil {
		return func(v string, args ...any) {}
	}
	return cfg.EvHandler
}

// =============================================================================

// Mine computes the merkle root of the block's transactions and searches for
// the smallest nonce that produces a block digest satisfying the difficulty.
// On success the block is sealed. If the search is cancelled or the nonce
// bound is exhausted the block remains unsealed. Pointer semantics are being
// used since a nonce is being discovered.
func (b *Block) Mine(ctx context.Context, cfg MineConfig) error {
	if b.IsSealed() {
		return ErrBlockSealed
	}

	if len(b.Trans) == 0 {
		return ErrNoTransactions
	}

	if cfg.Difficulty > MaxDifficulty {
		return ErrInvalidDifficulty
	}

	ev := cfg.ev()

	ev("database: Mine: MINING: blk[%d]: started", b.Header.Number)
	defer ev("database: Mine: MINING: blk[%d]: completed", b.Header.Number)

	for _, tx := range b.Trans {
		ev("database: Mine: MINING: blk[%d]: tx[%s]", b.Header.Number, tx)
	}

	tree, err := b.MerkleTree()
	if err != nil {
		return err
	}
	b.Header.MerkleRoot = tree.RootHex()

	var nonce uint64
	switch {
	case cfg.Workers <= 1:
		nonce, err = searchSequential(ctx, b.Header, cfg, ev)
	default:
		nonce, err = searchParallel(ctx, b.Header, cfg, ev)
	}

	if err != nil {
		ev("database: Mine: MINING: blk[%d]: ERROR: %s", b.Header.Number, err)
		return err
	}

	b.Header.Nonce = nonce
	b.Hash = b.CalculateHash()

	ev("database: Mine: MINING: SOLVED: blk[%d]: prevBlk[%s]: newBlk[%s]: nonce[%d]", b.Header.Number, b.Header.PrevBlockHash, b.Hash, nonce)

	return nil
}

// searchSequential tries every nonce starting at 0 and returns the first one
// that solves the difficulty.
func searchSequential(ctx context.Context, header BlockHeader, cfg MineConfig, ev func(v string, args ...any)) (uint64, error) {
	limit := cfg.limit()

	for nonce := uint64(0); ; nonce++ {
		if err := ctx.Err(); err != nil {
			ev("database: Mine: MINING: blk[%d]: CANCELLED: attempts[%d]", header.Number, nonce)
			return 0, err
		}

		header.Nonce = nonce
		if cfg.Difficulty.IsSolved(header.Digest()) {
			return nonce, nil
		}

		if (nonce+1)%progressInterval == 0 {
			ev("database: Mine: MINING: blk[%d]: attempts[%d]", header.Number, nonce+1)
		}

		if nonce == limit {
			return 0, fmt.Errorf("blk[%d]: max nonce[%d]: difficulty[%d]: %w", header.Number, limit, cfg.Difficulty, ErrDifficultyUnreachable)
		}
	}
}

// searchParallel splits the nonce space across the workers. Worker i tries
// i, i+W, i+2W and so on. Workers share the smallest solution found so far
// and stop once their next nonce is larger than it, which keeps the result
// identical to the sequential search.
func searchParallel(ctx context.Context, header BlockHeader, cfg MineConfig, ev func(v string, args ...any)) (uint64, error) {
	limit := cfg.limit()
	step := uint64(cfg.Workers)

	best := atomic.NewUint64(limit)
	found := atomic.NewBool(false)

	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < cfg.Workers; w++ {
		worker := w
		g.Go(func() error {
			h := header
			var attempts uint64

			for nonce := uint64(worker); nonce <= best.Load(); {
				if err := ctx.Err(); err != nil {
					return err
				}

				h.Nonce = nonce
				if cfg.Difficulty.IsSolved(h.Digest()) {
					found.Store(true)
					for {
						cur := best.Load()
						if nonce > cur || best.CompareAndSwap(cur, nonce) {
							break
						}
					}
					return nil
				}

				attempts++
				if attempts%progressInterval == 0 {
					ev("database: Mine: MINING: blk[%d]: worker[%d]: attempts[%d]", h.Number, worker, attempts)
				}

				next := nonce + step
				if next < nonce {
					return nil
				}
				nonce = next
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		ev("database: Mine: MINING: blk[%d]: CANCELLED", header.Number)
		return 0, err
	}

	if !found.Load() {
		return 0, fmt.Errorf("blk[%d]: max nonce[%d]: difficulty[%d]: %w", header.Number, limit, cfg.Difficulty, ErrDifficultyUnreachable)
	}

	return best.Load(), nil
}
