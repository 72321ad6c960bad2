package selector

import (
	"sort"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// amountSelect returns the transactions moving the largest amounts first.
// Transactions with the same amount keep the order they arrived in.
var amountSelect = func(transactions []database.Tx, howMany int) []database.Tx {
	sorted := make([]database.Tx, len(transactions))
	copy(sorted, transactions)

	sort.Stable(byAmount(sorted))

	return sorted[:limit(len(sorted), howMany)]
}

// byAmount provides sorting support by the transaction amount value.
type byAmount []database.Tx

// Len returns the number of transactions in the list.
func (ba byAmount) Len() int {
	return len(ba)
}

// Less helps to sort the list by amount in decending order.
func (ba byAmount) Less(i, j int) bool {
	return ba[i].Amount > ba[j].Amount
}

// Swap moves transactions in the order of the amount value.
func (ba byAmount) Swap(i, j int) {
	ba[i], ba[j] = ba[j], ba[i]
}
