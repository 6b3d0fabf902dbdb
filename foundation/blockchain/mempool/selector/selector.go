// Package selector provides different transaction selecting algorithms.
package selector

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// List of different select strategies.
const (
	StrategyFIFO = "fifo"
	StrategyLIFO = "lifo"
)

// Map of different select strategies with functions.
var strategies = map[string]Func{
	StrategyFIFO: fifoSelect,
	StrategyLIFO: lifoSelect,
}

// Func defines a function that takes the mempool transactions in the order
// they arrived and selects howMany of them in an order based on the
// functions strategy. Receiving -1 for howMany must return all the
// transactions in the strategies ordering. The provided slice must not be
// modified.
type Func func(transactions []database.Tx, howMany int) []database.Tx

// Retrieve returns the specified select strategy function. The strategy
// name is not case sensitive.
func Retrieve(strategy string) (Func, error) {
	fn, exists := strategies[strings.ToLower(strategy)]
	if !exists {
		return nil, fmt.Errorf("strategy %q does not exist", strategy)
	}
	return fn, nil
}

// =============================================================================

// limit normalizes howMany against the number of transactions available.
func limit(available int, howMany int) int {
	if howMany < 0 || howMany > available {
		return available
	}
	return howMany
}
