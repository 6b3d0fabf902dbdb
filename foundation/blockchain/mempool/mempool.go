// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool/selector"
)

// Mempool represents a cache of transactions waiting to be mined, kept in
// the order they arrived. There is no duplicate detection.
type Mempool struct {
	pool     []database.Tx
	mu       sync.RWMutex
	selectFn selector.Func
}

// New constructs a new mempool using the default select strategy.
func New() (*Mempool, error) {
	return NewWithStrategy(selector.StrategyFIFO)
}

// NewWithStrategy constructs a new mempool with specified select strategy.
func NewWithStrategy(strategy string) (*Mempool, error) {
	selectFn, err := selector.Retrieve(strategy)
	if err != nil {
		return nil, err
	}

	mp := Mempool{
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

// Upsert validates and adds a transaction to the mempool. On failure the
// pool is left unchanged.
func (mp *Mempool) Upsert(tx database.Tx) (int, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool), nil
}

// Delete removes one transaction equal to the specified transaction.
func (mp *Mempool) Delete(tx database.Tx) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return mp.delete(tx)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}

// PickBest uses the configured select strategy to return the next set
// of transactions for the next block. The transactions stay in the pool.
// Pass -1 for all the transactions.
func (mp *Mempool) PickBest(howMany int) []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return mp.selectFn(mp.pool, howMany)
}

// Take removes and returns up to howMany transactions selected by the
// configured select strategy. It is the destructive form of PickBest for
// callers that own the pool outright. State mines with PickBest and only
// deletes what made it into a block, so a cancelled mining run loses
// nothing.
func (mp *Mempool) Take(howMany int) []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.selectFn(mp.pool, howMany)
	for _, tx := range trans {
		mp.delete(tx)
	}

	return trans
}

// Copy returns a copy of the pool in arrival order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	cpy := make([]database.Tx, len(mp.pool))
	copy(cpy, mp.pool)

	return cpy
}

// =============================================================================

// delete removes the oldest entry equal to tx. The caller must hold the
// write lock.
func (mp *Mempool) delete(tx database.Tx) bool {
	for i := range mp.pool {
		if mp.pool[i] == tx {
			mp.pool = append(mp.pool[:i], mp.pool[i+1:]...)
			return true
		}
	}

	return false
}
