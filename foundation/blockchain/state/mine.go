package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are not enough transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// ErrChainChanged is returned when a block was mined against a tail that
// is no longer the latest block.
var ErrChainChanged = errors.New("chain changed while mining")

// =============================================================================

// MineNewBlock attempts to create a new block with a proper hash that can
// become the next block in the chain. The POW runs against a snapshot of the
// chain tail and mempool so the state stays available while mining.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: take snapshot")

	s.mu.Lock()
	trans := s.mempool.PickBest(s.genesis.TransPerBlock)
	prevBlock := s.db.LatestBlock()
	difficulty := max(s.difficulty, database.ConsensusDifficulty)
	s.mu.Unlock()

	// Are there enough transactions in the pool.
	if len(trans) == 0 {
		return database.Block{}, ErrNoTransactions
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW")

	// Attempt to create a new block by solving the POW puzzle. This can be cancelled.
	block, err := database.POW(ctx, database.POWArgs{
		Index:      prevBlock.Index + 1,
		PrevHash:   prevBlock.Hash,
		Trans:      trans,
		Difficulty: difficulty,
		EvHandler:  s.evHandler,
	})
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: validate and update database")

	s.mu.Lock()
	defer s.mu.Unlock()

	if latest := s.db.LatestBlock(); latest.Hash != prevBlock.Hash {
		return database.Block{}, fmt.Errorf("%w: mined on blk[%d], latest blk[%d]", ErrChainChanged, prevBlock.Index, latest.Index)
	}

	if err := s.updateDatabase(block); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// ProcessProposedBlock takes a block received from a peer, validates it and
// if that passes, adds the block to the local blockchain.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.PrevHash, block.Hash, len(block.Transactions))
	defer s.evHandler("state: ProcessProposedBlock: completed: newBlk[%s]", block.Hash)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateDatabase(block)
}

// =============================================================================

// updateDatabase validates the block against the latest block, appends it
// and removes its transactions from the mempool. The caller must hold the
// state lock.
func (s *State) updateDatabase(block database.Block) error {
	s.evHandler("state: updateDatabase: validate and append blk[%d]", block.Index)

	if err := s.db.Append(block, s.evHandler); err != nil {
		return err
	}

	s.evHandler("state: updateDatabase: remove from mempool")

	for _, tx := range block.Transactions {
		if s.mempool.Delete(tx) {
			s.evHandler("state: updateDatabase: tx[%s] removed", tx)
		}
	}

	s.adjustDifficulty()

	// Send an event about this new block.
	s.blockEvent(block)

	return nil
}

// adjustDifficulty moves the difficulty by one step when the chain length
// lands on the adjustment interval. Blocks produced faster than the target
// raise it and slower blocks lower it, never below 1. The caller must hold
// the state lock.
func (s *State) adjustDifficulty() {
	length := s.db.Length()
	interval := s.genesis.AdjustmentInterval

	if length < interval || length%interval != 0 {
		return
	}

	first, err := s.db.GetBlock(uint64(length - interval))
	if err != nil {
		return
	}
	last := s.db.LatestBlock()

	actual := int64(last.TimeStamp) - int64(first.TimeStamp)
	target := int64(s.genesis.TargetBlockTime) * int64(interval)

	switch {
	case actual > 0 && actual < target:
		s.difficulty++
		s.evHandler("state: adjustDifficulty: increased: difficulty[%d]: actual[%ds]: target[%ds]", s.difficulty, actual, target)

	case actual > target && s.difficulty > 1:
		s.difficulty--
		s.evHandler("state: adjustDifficulty: decreased: difficulty[%d]: actual[%ds]: target[%ds]", s.difficulty, actual, target)
	}
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"hash":%q,"block":%s}`, block.Hash, string(blockJSON))
}
