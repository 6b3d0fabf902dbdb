package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveGenesisBlock returns the first block of the chain.
func (s *State) RetrieveGenesisBlock() database.Block {
	return s.db.GenesisBlock()
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveBlocks returns a copy of the full chain.
func (s *State) RetrieveBlocks() []database.Block {
	return s.db.Copy()
}

// RetrieveMempool returns a copy of the mempool in arrival order.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveDifficulty returns the current difficulty.
func (s *State) RetrieveDifficulty() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.difficulty
}
