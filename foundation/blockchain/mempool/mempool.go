// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"errors"
	"sort"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool/selector"
)

// ErrMissingID is returned when a transaction without an id is added.
var ErrMissingID = errors.New("transaction has no id")

// entry keeps the arrival position of a pending transaction.
type entry struct {
	tx      database.Tx
	arrival uint64
}

// Mempool represents a cache of transactions waiting to be mined, keyed by
// transaction id.
type Mempool struct {
	pool     map[string]entry
	arrivals uint64
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() *Mempool {
	mp, _ := NewWithStrategy(selector.StrategyArrival)
	return mp
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
		pool:     make(map[string]entry),
		selectFn: selectFn,
	}

	return &mp, nil
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool. A replaced
// transaction keeps its original arrival position.
func (mp *Mempool) Upsert(tx database.Tx) (int, error) {
	if tx.ID == "" {
		return 0, ErrMissingID
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	if e, exists := mp.pool[tx.ID]; exists {
		e.tx = tx
		mp.pool[tx.ID] = e
		return len(mp.pool), nil
	}

	mp.arrivals++
	mp.pool[tx.ID] = entry{tx: tx, arrival: mp.arrivals}

	return len(mp.pool), nil
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(tx database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, tx.ID)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]entry)
}

// Copy returns the transactions in the order they arrived.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.ordered()
}

// PickBest uses the configured select strategy to return the next set
// of transactions for the next block. Pass -1 for all the transactions.
func (mp *Mempool) PickBest(howMany int) []database.Tx {
	mp.mu.RLock()
	txs := mp.ordered()
	mp.mu.RUnlock()

	return mp.selectFn(txs, howMany)
}

// =============================================================================

// ordered returns the pool in arrival order. The caller must hold a lock.
func (mp *Mempool) ordered() []database.Tx {
	entries := make([]entry, 0, len(mp.pool))
	for _, e := range mp.pool {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].arrival < entries[j].arrival
	})

	txs := make([]database.Tx, len(entries))
	for i, e := range entries {
		txs[i] = e.tx
	}

	return txs
}
