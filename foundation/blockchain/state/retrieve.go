package state

import (
	"errors"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// ErrBlockNotFound is returned when a block number is past the tip.
var ErrBlockNotFound = errors.New("block not found")

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveGenesisWallets returns the sender and recipient of the seed
// transaction.
func (s *State) RetrieveGenesisWallets() (*wallet.Wallet, *wallet.Wallet) {
	return s.genesisFrom, s.genesisTo
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.LatestBlock()
}

// RetrieveBlocks returns a copy of every block in the chain.
func (s *State) RetrieveBlocks() []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Blocks()
}

// RetrieveBlock returns a copy of the block with the specified number.
func (s *State) RetrieveBlock(number uint64) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if number >= uint64(s.chain.Length()) {
		return database.Block{}, ErrBlockNotFound
	}

	return s.chain.Blocks()[number], nil
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryChainLength returns the number of blocks in the chain.
func (s *State) QueryChainLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Length()
}
