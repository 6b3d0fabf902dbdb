package selector_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool/selector"
	"github.com/google/go-cmp/cmp"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func tran(from string, to string, amount float64) database.Tx {
	return database.Tx{From: from, To: to, Amount: amount, Signature: "sig", PublicKey: "key"}
}

func TestSelect(t *testing.T) {
	type table struct {
		name     string
		strategy string
		txs      []database.Tx
		howMany  int
		best     []database.Tx
	}

	a := tran("A", "B", 10)
	b := tran("B", "C", 5)
	c := tran("C", "A", 3)

	tt := []table{
		{name: "fifo-all", strategy: selector.StrategyFIFO, txs: []database.Tx{a, b, c}, howMany: -1, best: []database.Tx{a, b, c}},
		{name: "fifo-two", strategy: selector.StrategyFIFO, txs: []database.Tx{a, b, c}, howMany: 2, best: []database.Tx{a, b}},
		{name: "fifo-more", strategy: selector.StrategyFIFO, txs: []database.Tx{a, b}, howMany: 10, best: []database.Tx{a, b}},
		{name: "lifo-all", strategy: selector.StrategyLIFO, txs: []database.Tx{a, b, c}, howMany: -1, best: []database.Tx{c, b, a}},
		{name: "lifo-two", strategy: selector.StrategyLIFO, txs: []database.Tx{a, b, c}, howMany: 2, best: []database.Tx{c, b}},
		{name: "lifo-upper", strategy: "LIFO", txs: []database.Tx{a, b}, howMany: 1, best: []database.Tx{b}},
		{name: "empty", strategy: selector.StrategyFIFO, txs: []database.Tx{}, howMany: 5, best: []database.Tx{}},
	}

	t.Log("Given the need to select transactions from the mempool.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				fn, err := selector.Retrieve(tst.strategy)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to retrieve strategy %q: %v", failed, testID, tst.strategy, err)
				}

				orig := make([]database.Tx, len(tst.txs))
				copy(orig, tst.txs)

				got := fn(tst.txs, tst.howMany)
				if diff := cmp.Diff(tst.best, got); diff != "" {
					t.Fatalf("\t%s\tTest %d:\tShould get back the right transactions:\n%s", failed, testID, diff)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the right transactions.", success, testID)

				if diff := cmp.Diff(orig, tst.txs); diff != "" {
					t.Fatalf("\t%s\tTest %d:\tShould not modify the provided transactions:\n%s", failed, testID, diff)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestRetrieveUnknown(t *testing.T) {
	if _, err := selector.Retrieve("tip"); err == nil {
		t.Fatalf("\t%s\tShould not retrieve an unknown strategy.", failed)
	}
	t.Logf("\t%s\tShould not retrieve an unknown strategy.", success)
}
