package mempool_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool/selector"
	"github.com/google/go-cmp/cmp"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func tran(from string, to string, amount float64) database.Tx {
	return database.Tx{
		From:      from,
		To:        to,
		Amount:    amount,
		TimeStamp: 1704067200,
		Signature: "sig",
		PublicKey: "key",
	}
}

func TestCRUD(t *testing.T) {
	type table struct {
		name     string
		strategy string
		txs      []database.Tx
		best     []database.Tx
	}

	a := tran("A", "B", 10)
	b := tran("B", "C", 5)
	c := tran("C", "A", 3)

	tt := []table{
		{
			name:     "fifo",
			strategy: selector.StrategyFIFO,
			txs:      []database.Tx{a, b, c},
			best:     []database.Tx{a, b},
		},
		{
			name:     "lifo",
			strategy: selector.StrategyLIFO,
			txs:      []database.Tx{a, b, c},
			best:     []database.Tx{c, b},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp, err := mempool.NewWithStrategy(tst.strategy)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to construct mempool: %v", failed, testID, err)
					}

					for i, tx := range tst.txs {
						n, err := mp.Upsert(tx)
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to add new transaction: %v", failed, testID, err)
						}
						if n != i+1 {
							t.Fatalf("\t%s\tTest %d:\tShould get back the new count, got %d.", failed, testID, n)
						}
						t.Logf("\t%s\tTest %d:\tShould be able to add new transaction: %s", success, testID, tx)
					}

					if diff := cmp.Diff(tst.txs, mp.Copy()); diff != "" {
						t.Fatalf("\t%s\tTest %d:\tShould keep arrival order:\n%s", failed, testID, diff)
					}
					t.Logf("\t%s\tTest %d:\tShould keep arrival order.", success, testID)

					if diff := cmp.Diff(tst.best, mp.PickBest(2)); diff != "" {
						t.Fatalf("\t%s\tTest %d:\tShould pick the right transactions:\n%s", failed, testID, diff)
					}
					if mp.Count() != len(tst.txs) {
						t.Fatalf("\t%s\tTest %d:\tShould not remove picked transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould pick the right transactions.", success, testID)

					if diff := cmp.Diff(tst.best, mp.Take(2)); diff != "" {
						t.Fatalf("\t%s\tTest %d:\tShould take the right transactions:\n%s", failed, testID, diff)
					}
					if mp.Count() != len(tst.txs)-2 {
						t.Fatalf("\t%s\tTest %d:\tShould remove taken transactions, got %d.", failed, testID, mp.Count())
					}
					t.Logf("\t%s\tTest %d:\tShould take the right transactions.", success, testID)

					if got := mp.Take(10); len(got) != 1 {
						t.Fatalf("\t%s\tTest %d:\tShould take what is left, got %d.", failed, testID, len(got))
					}
					t.Logf("\t%s\tTest %d:\tShould take what is left.", success, testID)

					mp.Upsert(a)
					mp.Upsert(a)
					if !mp.Delete(a) || mp.Count() != 1 {
						t.Fatalf("\t%s\tTest %d:\tShould remove one duplicate only.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould remove one duplicate only.", success, testID)

					mp.Truncate()
					if mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate mempool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate mempool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestInvalid(t *testing.T) {
	mp, err := mempool.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct mempool: %v", failed, err)
	}

	if _, err := mp.Upsert(tran("A", "B", 0)); !errors.Is(err, database.ErrInvalidTx) {
		t.Fatalf("\t%s\tShould reject a zero amount transaction, got %v.", failed, err)
	}
	if mp.Count() != 0 {
		t.Fatalf("\t%s\tShould leave the pool unchanged.", failed)
	}
	t.Logf("\t%s\tShould reject a zero amount transaction.", success)

	if _, err := mempool.NewWithStrategy("tip"); err == nil {
		t.Fatalf("\t%s\tShould reject an unknown strategy.", failed)
	}
	t.Logf("\t%s\tShould reject an unknown strategy.", success)
}

func TestConcurrentUpsert(t *testing.T) {
	mp, err := mempool.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct mempool: %v", failed, err)
	}

	const g = 50

	var wg sync.WaitGroup
	wg.Add(g)
	for i := 0; i < g; i++ {
		i := i
		go func() {
			defer wg.Done()
			mp.Upsert(tran("A", "B", float64(i+1)))
		}()
	}
	wg.Wait()

	if mp.Count() != g {
		t.Fatalf("\t%s\tShould hold every transaction, got %d.", failed, mp.Count())
	}
	t.Logf("\t%s\tShould hold every transaction.", success)
}
