package selector

import "github.com/ardanlabs/ledger/foundation/blockchain/database"

// lifoSelect returns the most recently added transactions first. Under a
// sustained load older transactions can wait indefinitely.
var lifoSelect = func(transactions []database.Tx, howMany int) []database.Tx {
	howMany = limit(len(transactions), howMany)

	final := make([]database.Tx, 0, howMany)
	for i := len(transactions) - 1; i >= 0 && len(final) < howMany; i-- {
		final = append(final, transactions[i])
	}

	return final
}
