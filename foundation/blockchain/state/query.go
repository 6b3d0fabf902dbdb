package state

import (
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// QueryBalance walks the chain and returns the balance for the address.
func (s *State) QueryBalance(address string) float64 {
	return s.db.Balance(address)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryChainLength returns the number of blocks in the chain including
// the genesis block.
func (s *State) QueryChainLength() int {
	return s.db.Length()
}

// QueryBlocksByNumber returns the set of blocks based on block numbers.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	if from == QueryLatest {
		from = s.db.LatestBlock().Index
		to = from
	}
	if to == QueryLatest {
		to = s.db.LatestBlock().Index
	}

	var out []database.Block
	for i := from; i <= to; i++ {
		block, err := s.db.GetBlock(i)
		if err != nil {
			s.evHandler("state: getblock: ERROR: %s", err)
			return out
		}
		out = append(out, block)
	}

	return out
}

// QueryBlocksByAddress returns the set of blocks holding a transaction
// sent from or to the address.
func (s *State) QueryBlocksByAddress(address string) ([]database.Block, error) {
	var out []database.Block

	iter := s.db.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		for _, tx := range block.Transactions {
			if tx.From == address || tx.To == address {
				out = append(out, block)
				break
			}
		}
	}

	return out, nil
}

// =============================================================================

// ValidateChain checks every block in the chain against its parent.
func (s *State) ValidateChain() error {
	return s.db.Validate(s.evHandler)
}

// IsChainValid reports whether every block in the chain is valid.
func (s *State) IsChainValid() bool {
	return s.ValidateChain() == nil
}

// Stats represents a summary of the blockchain.
type Stats struct {
	Blocks     int  `json:"blocks"`
	Valid      bool `json:"valid"`
	Difficulty int  `json:"difficulty"`
	Mempool    int  `json:"mempool"`
}

// String implements the Stringer interface.
func (st Stats) String() string {
	return fmt.Sprintf("Blocks: %d | Valid: %t | Difficulty: %d | Mempool: %d", st.Blocks, st.Valid, st.Difficulty, st.Mempool)
}

// Stats returns a summary of the blockchain.
func (s *State) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Blocks:     s.db.Length(),
		Valid:      s.db.Validate(nil) == nil,
		Difficulty: s.difficulty,
		Mempool:    s.mempool.Count(),
	}
}
