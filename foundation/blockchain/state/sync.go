package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrGenesisMismatch is returned when a peer chain starts from a different
// genesis block.
var ErrGenesisMismatch = errors.New("genesis block mismatch")

// MergeChain applies the blocks of a peer chain that extend the local chain.
// The genesis blocks must match or nothing is applied. Every other block is
// appended only if it validates against the local latest block at the time
// it is processed, otherwise it is dropped. There is no fork choice. The
// number of appended blocks is returned.
func (s *State) MergeChain(blocks []database.Block) (int, error) {
	if len(blocks) == 0 {
		return 0, fmt.Errorf("%w: empty chain", ErrGenesisMismatch)
	}

	s.evHandler("state: MergeChain: started: blocks[%d]", len(blocks))

	s.mu.Lock()
	defer s.mu.Unlock()

	genesisBlock := s.db.GenesisBlock()
	if blocks[0].Hash != genesisBlock.Hash {
		return 0, fmt.Errorf("%w: got %s, exp %s", ErrGenesisMismatch, blocks[0].Hash, genesisBlock.Hash)
	}

	var applied int
	for _, block := range blocks[1:] {
		if err := s.updateDatabase(block); err != nil {
			s.evHandler("state: MergeChain: dropped blk[%d]: %s", block.Index, err)
			continue
		}
		applied++
	}

	s.evHandler("state: MergeChain: completed: applied[%d]: length[%d]", applied, s.db.Length())

	return applied, nil
}
