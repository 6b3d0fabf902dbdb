package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// UpsertMempool adds a new transaction to the mempool.
func (s *State) UpsertMempool(tx database.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.mempool.Upsert(tx)
	if err != nil {
		return err
	}

	s.evHandler("state: UpsertMempool: tx[%s]: mempool[%d]", tx, n)

	return nil
}

// TruncateMempool clears all the transactions from the mempool.
func (s *State) TruncateMempool() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mempool.Truncate()
}
