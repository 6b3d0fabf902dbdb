// Package database handles all the lower level support for maintaining the
// blockchain in memory: the transaction and block models, the proof of work
// and the ordered sequence of blocks.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBlockNotFound is returned when a block index is outside the chain.
var ErrBlockNotFound = errors.New("block not found")

// =============================================================================

// Iterator provides support to walk the chain starting with the genesis block.
type Iterator struct {
	db    *Database
	index uint64
	done  bool
}

// Next retrieves the next block in the chain.
func (it *Iterator) Next() (Block, error) {
	block, err := it.db.GetBlock(it.index)
	if err != nil {
		it.done = true
		return Block{}, err
	}

	it.index++
	return block, nil
}

// Done returns the end of chain value.
func (it *Iterator) Done() bool {
	return it.done
}

// =============================================================================

// Database manages the ordered sequence of blocks. The chain always starts
// with the genesis block and only grows by appending a valid next block.
type Database struct {
	mu     sync.RWMutex
	blocks []Block
}

// New constructs a database seeded with the specified genesis block.
func New(genesisBlock Block) (*Database, error) {
	if genesisBlock.Index != 0 {
		return nil, fmt.Errorf("genesis block must have index 0, got %d", genesisBlock.Index)
	}

	if genesisBlock.PrevHash != ZeroHash {
		return nil, fmt.Errorf("genesis block must reference the zero hash, got %s", genesisBlock.PrevHash)
	}

	db := Database{
		blocks: []Block{genesisBlock},
	}

	return &db, nil
}

// Append validates the block against the latest block and adds it to the
// end of the chain.
func (db *Database) Append(block Block, evHandler func(v string, args ...any)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := block.ValidateBlock(db.blocks[len(db.blocks)-1], evHandler); err != nil {
		return err
	}

	db.blocks = append(db.blocks, block)

	return nil
}

// GenesisBlock returns the first block of the chain.
func (db *Database) GenesisBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[0]
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[len(db.blocks)-1]
}

// Length returns the number of blocks in the chain including genesis.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(index uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if index >= uint64(len(db.blocks)) {
		return Block{}, fmt.Errorf("%w: index %d", ErrBlockNotFound, index)
	}

	return db.blocks[index], nil
}

// Copy returns a copy of the chain.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.blocks))
	copy(blocks, db.blocks)

	return blocks
}

// ForEach returns an iterator to walk through all the blocks
// starting with the genesis block.
func (db *Database) ForEach() *Iterator {
	return &Iterator{db: db}
}

// Validate walks the chain and checks every block against its parent.
func (db *Database) Validate(evHandler func(v string, args ...any)) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for i := 1; i < len(db.blocks); i++ {
		if err := db.blocks[i].ValidateBlock(db.blocks[i-1], evHandler); err != nil {
			return fmt.Errorf("blk[%d]: %w", i, err)
		}
	}

	return nil
}

// Balance walks every transaction in the chain and returns the net amount
// for the specified address. Nothing is cached, the balance is calculated
// on every call.
func (db *Database) Balance(address string) float64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var balance float64
	for _, block := range db.blocks {
		for _, tx := range block.Transactions {
			if tx.From == address {
				balance -= tx.Amount
			}
			if tx.To == address {
				balance += tx.Amount
			}
		}
	}

	return balance
}
