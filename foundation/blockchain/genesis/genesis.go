// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date               time.Time `json:"date"`                // Pins the genesis block timestamp. Zero means the node start time.
	Difficulty         int       `json:"difficulty"`          // Starting number of leading 0's needed to solve the work problem.
	TransPerBlock      int       `json:"trans_per_block"`     // The maximum number of transactions that can be in a block.
	TargetBlockTime    int       `json:"target_block_time"`   // Expected number of seconds between blocks.
	AdjustmentInterval int       `json:"adjustment_interval"` // Number of blocks between difficulty adjustments.
}

// Default returns the genesis settings used when no file is provided.
func Default() Genesis {
	return Genesis{
		Difficulty:         2,
		TransPerBlock:      10,
		TargetBlockTime:    10,
		AdjustmentInterval: 10,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Any value missing from the file
// is taken from the defaults.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the genesis settings can drive the chain.
func (g Genesis) Validate() error {
	if g.Difficulty < 1 {
		return fmt.Errorf("difficulty must be at least 1, got %d", g.Difficulty)
	}

	if g.TransPerBlock < 1 {
		return fmt.Errorf("trans per block must be at least 1, got %d", g.TransPerBlock)
	}

	if g.TargetBlockTime < 1 {
		return fmt.Errorf("target block time must be at least 1, got %d", g.TargetBlockTime)
	}

	if g.AdjustmentInterval < 1 {
		return fmt.Errorf("adjustment interval must be at least 1, got %d", g.AdjustmentInterval)
	}

	return nil
}

// TimeStamp returns the pinned genesis timestamp in unix seconds, or zero
// when the date isn't pinned.
func (g Genesis) TimeStamp() uint64 {
	if g.Date.IsZero() {
		return 0
	}

	return uint64(g.Date.UTC().Unix())
}
