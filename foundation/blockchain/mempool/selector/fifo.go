package selector

import "github.com/ardanlabs/ledger/foundation/blockchain/database"

// fifoSelect returns the oldest transactions first so no transaction can be
// starved by a steady stream of newer ones.
var fifoSelect = func(transactions []database.Tx, howMany int) []database.Tx {
	howMany = limit(len(transactions), howMany)

	final := make([]database.Tx, howMany)
	copy(final, transactions[:howMany])

	return final
}
