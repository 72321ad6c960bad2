// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/powledger/foundation/blockchain/metrics"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis        genesis.Genesis
	SelectStrategy string
	GenesisFrom    *wallet.Wallet // Sender of the seed transaction, generated when nil.
	GenesisTo      *wallet.Wallet // Recipient of the seed transaction, generated when nil.
	Metrics        *metrics.Metrics
	EvHandler      EventHandler
}

// State manages the blockchain database. The chain itself is not safe for
// concurrent use so every access goes through the mutex.
type State struct {
	evHandler EventHandler
	mu        sync.Mutex

	genesis     genesis.Genesis
	genesisFrom *wallet.Wallet
	genesisTo   *wallet.Wallet
	mineCfg     database.MineConfig
	mempool     *mempool.Mempool
	chain       *database.Chain
	metrics     *metrics.Metrics

	Worker Worker
}

// New constructs the chain, seals the genesis block with the seed
// transaction and returns the state ready for new transactions.
func New(ctx context.Context, cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	if cfg.SelectStrategy == "" {
		cfg.SelectStrategy = selector.StrategyArrival
	}

	// Construct a mempool with the specified select strategy.
	mp, err := mempool.NewWithStrategy(cfg.SelectStrategy)
	if err != nil {
		return nil, err
	}

	from, to, err := genesisWallets(cfg)
	if err != nil {
		return nil, err
	}

	mineCfg := cfg.Genesis.MineConfig(ev)
	chain := database.NewChain(mineCfg)

	ev("state: New: genesis: seed tx: from[%s]: to[%s]: amount[%v]", from.Name, to.Name, cfg.Genesis.SeedAmount)

	seed, err := from.Send(to.PublicKey(), cfg.Genesis.SeedAmount)
	if err != nil {
		return nil, fmt.Errorf("seed tx: %w", err)
	}

	block, err := chain.Genesis(ctx, seed)
	if err != nil {
		return nil, err
	}

	ev("state: New: genesis: sealed: %s", block)

	cfg.Metrics.ChainLength(chain.Length())

	state := State{
		evHandler:   ev,
		genesis:     cfg.Genesis,
		genesisFrom: from,
		genesisTo:   to,
		mineCfg:     mineCfg,
		mempool:     mp,
		chain:       chain,
		metrics:     cfg.Metrics,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// genesisWallets returns the configured genesis wallets or generates them.
func genesisWallets(cfg Config) (*wallet.Wallet, *wallet.Wallet, error) {
	from := cfg.GenesisFrom
	if from == nil {
		w, err := wallet.New("wallet-1")
		if err != nil {
			return nil, nil, err
		}
		from = w
	}

	to := cfg.GenesisTo
	if to == nil {
		w, err := wallet.New("wallet-2")
		if err != nil {
			return nil, nil, err
		}
		to = w
	}

	return from, to, nil
}
