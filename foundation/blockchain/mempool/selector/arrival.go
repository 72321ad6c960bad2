package selector

import "github.com/ardanlabs/powledger/foundation/blockchain/database"

// arrivalSelect returns the oldest transactions first.
var arrivalSelect = func(transactions []database.Tx, howMany int) []database.Tx {
	n := limit(len(transactions), howMany)

	final := make([]database.Tx, n)
	copy(final, transactions[:n])

	return final
}
