// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start
// the blockchain.
type Config struct {
	Genesis        genesis.Genesis
	SelectStrategy string
	EvHandler      EventHandler
}

// State manages the blockchain database.
type State struct {
	mu       sync.Mutex
	miningMu sync.Mutex

	evHandler  EventHandler
	genesis    genesis.Genesis
	difficulty int

	db      *database.Database
	mempool *mempool.Mempool
}

// New constructs a new blockchain for data management. The genesis block is
// mined as part of construction.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	// Construct a mempool with the specified select strategy.
	mempool, err := mempool.NewWithStrategy(cfg.SelectStrategy)
	if err != nil {
		return nil, err
	}

	ev("state: New: mining genesis block")

	genesisBlock, err := database.NewGenesisBlock(context.Background(), cfg.Genesis.TimeStamp())
	if err != nil {
		return nil, fmt.Errorf("genesis block: %w", err)
	}

	db, err := database.New(genesisBlock)
	if err != nil {
		return nil, err
	}

	ev("state: New: genesis block[%s]", genesisBlock.Hash)

	// Create the State to provide support for managing the blockchain.
	state := State{
		evHandler:  ev,
		genesis:    cfg.Genesis,
		difficulty: cfg.Genesis.Difficulty,
		db:         db,
		mempool:    mempool,
	}

	return &state, nil
}
