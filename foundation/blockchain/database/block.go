package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ConsensusDifficulty is the number of leading '0' characters every block
// hash on the network must carry to be accepted.
const ConsensusDifficulty = 2

// ZeroHash represents the previous hash of the genesis block.
var ZeroHash = strings.Repeat("0", 64)

// ErrInvalidBlock is wrapped by every block validation failure.
var ErrInvalidBlock = errors.New("invalid block")

// =============================================================================

// Block represents a group of transactions batched together and linked to
// the previous block by hash.
type Block struct {
	Index        uint64 `json:"index"`        // Position of the block in the chain, genesis is 0.
	TimeStamp    uint64 `json:"timestamp"`    // Unix seconds when mining of the block started.
	Transactions []Tx   `json:"transactions"` // Ordered set of transactions in the block.
	PrevHash     string `json:"prev_hash"`    // Hash of the previous block in the chain.
	Hash         string `json:"hash"`         // Hash of this block, solved by the POW.
	Nonce        uint64 `json:"nonce"`        // Value identified to solve the hash solution.
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Index      uint64
	PrevHash   string
	Trans      []Tx
	Difficulty int
	TimeStamp  uint64
	EvHandler  func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle. If no timestamp is provided the
// current time is used.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	timeStamp := args.TimeStamp
	if timeStamp == 0 {
		timeStamp = uint64(time.Now().UTC().Unix())
	}

	// Take a private copy of the transactions so the caller can't mutate
	// the block once it's mined.
	trans := make([]Tx, len(args.Trans))
	copy(trans, args.Trans)

	nb := Block{
		Index:        args.Index,
		TimeStamp:    timeStamp,
		Transactions: trans,
		PrevHash:     args.PrevHash,
		Nonce:        0, // Will be identified by the POW algorithm.
	}

	if err := nb.performPOW(ctx, args.Difficulty, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, difficulty int, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started: blk[%d]: difficulty[%d]: numTrans[%d]", b.Index, difficulty, len(b.Transactions))
	defer ev("database: PerformPOW: MINING: completed: blk[%d]", b.Index)

	for _, tx := range b.Transactions {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		hash := CalculateHash(b.Index, b.TimeStamp, b.Transactions, b.PrevHash, b.Nonce)
		if !isHashSolved(difficulty, hash) {
			b.Nonce++
			continue
		}

		b.Hash = hash

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", b.PrevHash, hash, b.Nonce)
		ev("database: PerformPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// NewGenesisBlock mines the first block of the chain. Every node that mines
// the genesis block with the same timestamp produces the same block. A zero
// timestamp means the current time.
func NewGenesisBlock(ctx context.Context, timeStamp uint64) (Block, error) {
	if timeStamp == 0 {
		timeStamp = uint64(time.Now().UTC().Unix())
	}

	tx := Tx{
		From:      "GENESIS",
		To:        "GENESIS",
		Amount:    0,
		TimeStamp: timeStamp,
		Signature: "genesis_signature",
		PublicKey: "genesis_key",
	}

	return POW(ctx, POWArgs{
		Index:      0,
		PrevHash:   ZeroHash,
		Trans:      []Tx{tx},
		Difficulty: ConsensusDifficulty,
		TimeStamp:  timeStamp,
	})
}

// CalculateHash returns the hex encoded sha256 hash of the block fields.
// The transactions are hashed in the order provided.
func CalculateHash(index uint64, timeStamp uint64, trans []Tx, prevHash string, nonce uint64) string {
	txData := make([]string, len(trans))
	for i, tx := range trans {
		txData[i] = tx.String()
	}

	input := strings.Join([]string{
		strconv.FormatUint(index, 10),
		strconv.FormatUint(timeStamp, 10),
		strings.Join(txData, "|"),
		prevHash,
		strconv.FormatUint(nonce, 10),
	}, "|")

	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// ValidateBlock takes a block and validates it to be the next block after
// the specified previous block.
func (b Block) ValidateBlock(previousBlock Block, evHandler func(v string, args ...any)) error {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block index is the next index", b.Index)

	nextIndex := previousBlock.Index + 1
	if b.Index != nextIndex {
		return fmt.Errorf("%w: this block is not the next index, got %d, exp %d", ErrInvalidBlock, b.Index, nextIndex)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: prev hash does match parent block", b.Index)

	if b.PrevHash != previousBlock.Hash {
		return fmt.Errorf("%w: prev block hash doesn't match our known parent, got %s, exp %s", ErrInvalidBlock, b.PrevHash, previousBlock.Hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: transactions are valid", b.Index)

	for i, tx := range b.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("%w: tx %d: %w", ErrInvalidBlock, i, err)
		}
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash matches block data", b.Index)

	hash := CalculateHash(b.Index, b.TimeStamp, b.Transactions, b.PrevHash, b.Nonce)
	if b.Hash != hash {
		return fmt.Errorf("%w: block hash doesn't match block data, got %s, exp %s", ErrInvalidBlock, b.Hash, hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Index)

	if !isHashSolved(ConsensusDifficulty, b.Hash) {
		return fmt.Errorf("%w: %s invalid block hash for difficulty %d", ErrInvalidBlock, b.Hash, ConsensusDifficulty)
	}

	return nil
}

// IsValid reports whether the block is a valid successor of prev.
func (b Block) IsValid(prev Block) bool {
	return b.ValidateBlock(prev, nil) == nil
}

// =============================================================================

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty int, hash string) bool {
	if len(hash) != 64 || difficulty < 0 || difficulty > len(hash) {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == difficulty
}
