package database

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Chain is the ordered, append-only ledger of sealed blocks. A Chain is not
// safe for concurrent use, callers must serialize access.
type Chain struct {
	blocks  []Block
	mineCfg MineConfig
}

// NewChain constructs an empty chain. The mining configuration is used to
// seal the genesis block and to audit the difficulty of every block.
func NewChain(mineCfg MineConfig) *Chain {
	return &Chain{
		mineCfg: mineCfg,
	}
}

// Genesis constructs block 0 with an empty previous hash holding the seed
// transaction, seals it and installs it as the only block of the chain.
func (c *Chain) Genesis(ctx context.Context, seed Tx) (Block, error) {
	if len(c.blocks) > 0 {
		return Block{}, ErrChainNotEmpty
	}

	block := NewBlock(0, "")
	if err := block.AddTransaction(seed); err != nil {
		return Block{}, err
	}

	if err := block.Mine(ctx, c.mineCfg); err != nil {
		return Block{}, fmt.Errorf("mine genesis: %w", err)
	}

	c.blocks = append(c.blocks, block)

	return block.Copy(), nil
}

// AddBlock appends the candidate block to the chain after checking it links
// to the current tip and its hash matches its fields. Earlier blocks are not
// re-validated. The chain is not changed when the candidate is rejected.
func (c *Chain) AddBlock(candidate Block) error {
	if len(c.blocks) == 0 {
		return ErrEmptyChain
	}

	ev := c.mineCfg.ev()
	tip := c.blocks[len(c.blocks)-1]

	if err := checkBlock(candidate, tip, ev); err != nil {
		return err
	}

	c.blocks = append(c.blocks, candidate.Copy())

	ev("database: AddBlock: blk[%d]: added: hash[%s]", candidate.Header.Number, candidate.Hash)

	return nil
}

// Validate walks the chain from the block after genesis to the tip and
// returns an IntegrityError for the first block that doesn't link to its
// parent or whose hash doesn't match its fields.
func (c *Chain) Validate() error {
	ev := c.mineCfg.ev()

	for i := 1; i < len(c.blocks); i++ {
		if err := checkBlock(c.blocks[i], c.blocks[i-1], ev); err != nil {
			return err
		}
	}

	return nil
}

// IsValid reports whether Validate finds no violation.
func (c *Chain) IsValid() bool {
	return c.Validate() == nil
}

// Audit checks every block of the chain, including genesis, and returns all
// the violations found. Beyond the checks of Validate it confirms genesis has
// no previous hash and every block hash satisfies the difficulty.
func (c *Chain) Audit() error {
	if len(c.blocks) == 0 {
		return ErrEmptyChain
	}

	ev := c.mineCfg.ev()
	var result *multierror.Error

	genesis := c.blocks[0]
	ev("database: Audit: blk[%d]: check: genesis has no previous hash", genesis.Header.Number)

	if genesis.Header.PrevBlockHash != "" {
		result = multierror.Append(result, &IntegrityError{
			Number: genesis.Header.Number,
			Err:    ErrGenesisPrevHash,
			Got:    genesis.Header.PrevBlockHash,
			Exp:    `""`,
		})
	}

	if hash := genesis.CalculateHash(); hash != genesis.Hash {
		result = multierror.Append(result, &IntegrityError{
			Number: genesis.Header.Number,
			Err:    ErrHashMismatch,
			Got:    genesis.Hash,
			Exp:    hash,
		})
	}

	for i := 1; i < len(c.blocks); i++ {
		if err := checkBlock(c.blocks[i], c.blocks[i-1], ev); err != nil {
			result = multierror.Append(result, err)
		}
	}

	for _, block := range c.blocks {
		ev("database: Audit: blk[%d]: check: block hash has been solved", block.Header.Number)

		if !c.mineCfg.Difficulty.IsSolvedHex(block.Hash) {
			result = multierror.Append(result, &IntegrityError{
				Number: block.Header.Number,
				Err:    ErrDifficultyNotSatisfied,
				Got:    block.Hash,
				Exp:    fmt.Sprintf("prefix of %d zero bits", c.mineCfg.Difficulty),
			})
		}
	}

	return result.ErrorOrNil()
}

// Blocks returns a copy of the blocks in the chain.
func (c *Chain) Blocks() []Block {
	blocks := make([]Block, len(c.blocks))
	for i, block := range c.blocks {
		blocks[i] = block.Copy()
	}

	return blocks
}

// LatestBlock returns a copy of the tip of the chain.
func (c *Chain) LatestBlock() (Block, error) {
	if len(c.blocks) == 0 {
		return Block{}, ErrEmptyChain
	}

	return c.blocks[len(c.blocks)-1].Copy(), nil
}

// Length returns the number of blocks in the chain.
func (c *Chain) Length() int {
	return len(c.blocks)
}

// Difficulty returns the difficulty blocks are sealed with.
func (c *Chain) Difficulty() Difficulty {
	return c.mineCfg.Difficulty
}

// =============================================================================

// checkBlock applies the linkage and hash recomputation checks of a block
// against its parent.
func checkBlock(block Block, parent Block, ev func(v string, args ...any)) error {
	ev("database: Validate: blk[%d]: check: parent hash does match parent block", block.Header.Number)

	if block.Header.PrevBlockHash != parent.Hash {
		return &IntegrityError{
			Number: block.Header.Number,
			Err:    ErrPrevHashMismatch,
			Got:    block.Header.PrevBlockHash,
			Exp:    parent.Hash,
		}
	}

	ev("database: Validate: blk[%d]: check: block hash does match block fields", block.Header.Number)

	if hash := block.CalculateHash(); hash != block.Hash {
		return &IntegrityError{
			Number: block.Header.Number,
			Err:    ErrHashMismatch,
			Got:    block.Hash,
			Exp:    hash,
		}
	}

	return nil
}
