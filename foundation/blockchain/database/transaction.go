package database

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidTx is wrapped by every transaction validation failure.
var ErrInvalidTx = errors.New("invalid transaction")

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	From      string  `json:"from"`       // Address of the account sending the value.
	To        string  `json:"to"`         // Address of the account receiving the value.
	Amount    float64 `json:"amount"`     // Monetary value transferred, must be positive.
	TimeStamp uint64  `json:"timestamp"`  // Unix seconds when the transaction was constructed.
	Signature string  `json:"signature"`  // Opaque signature supplied by the sender's wallet.
	PublicKey string  `json:"public_key"` // Opaque public key supplied by the sender's wallet.
}

// NewTx constructs a new transaction stamped with the current time.
func NewTx(from string, to string, amount float64, signature string, publicKey string) Tx {
	return Tx{
		From:      from,
		To:        to,
		Amount:    amount,
		TimeStamp: uint64(time.Now().UTC().Unix()),
		Signature: signature,
		PublicKey: publicKey,
	}
}

// Validate checks the transaction is well formed. The signature and public
// key are only checked for presence. Nothing here verifies the signature
// against the public key.
func (tx Tx) Validate() error {
	if tx.Amount <= 0 {
		return fmt.Errorf("%w: amount %s must be greater than zero", ErrInvalidTx, FormatAmount(tx.Amount))
	}

	if tx.From == "" || tx.To == "" {
		return fmt.Errorf("%w: from and to accounts are required", ErrInvalidTx)
	}

	if tx.From == tx.To {
		return fmt.Errorf("%w: from and to accounts are the same", ErrInvalidTx)
	}

	if tx.Signature == "" || tx.PublicKey == "" {
		return fmt.Errorf("%w: signature and public key are required", ErrInvalidTx)
	}

	return nil
}

// IsValid reports whether the transaction passes validation.
func (tx Tx) IsValid() bool {
	return tx.Validate() == nil
}

// String implements the Stringer interface for logging. This is also the
// representation used when hashing a block.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%s", tx.From, tx.To, FormatAmount(tx.Amount))
}

// =============================================================================

// FormatAmount renders an amount using the shortest decimal representation
// that round trips, so 10 renders as "10" and 10.5 as "10.5".
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
