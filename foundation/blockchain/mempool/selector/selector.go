// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyArrival = "arrival"
	StrategyAmount  = "amount"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyArrival: arrivalSelect,
	StrategyAmount:  amountSelect,
}

// Func defines a function that takes the pending transactions in the order
// they arrived and selects howMany of them in an order based on the functions
// strategy. Receiving -1 for howMany must return all the transactions in the
// strategies ordering. The input slice must not be modified.
type Func func(transactions []database.Tx, howMany int) []database.Tx

// Retrieve returns the specified select strategy function.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strategy]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// limit returns the number of transactions to take from a list of n.
func limit(n int, howMany int) int {
	if howMany < 0 || howMany > n {
		return n
	}
	return howMany
}
