// Package p2p implements the node to node wire protocol. Every exchange
// happens on a fresh connection: one JSON message is written, at most one
// JSON message is written back, and the connection is closed.
package p2p

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// MaxFrameSize is the largest message accepted from the wire. A larger
// message fails to decode.
const MaxFrameSize = 128 << 10

// Set of message types understood by a node.
const (
	TypeSyncRequest    = "SYNC_REQUEST"
	TypeSyncResponse   = "SYNC_RESPONSE"
	TypeNewBlock       = "NEW_BLOCK"
	TypeNewTransaction = "NEW_TRANSACTION"
)

// Set of error variables for handling messages.
var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrInvalidMessage = errors.New("invalid message")
)

// =============================================================================

// Message represents a message exchanged between nodes. The type field
// decides which of the other fields carries the payload.
type Message struct {
	Type        string           `json:"type"`
	From        string           `json:"from,omitempty"`
	Chain       []database.Block `json:"chain,omitempty"`
	Block       *database.Block  `json:"block,omitempty"`
	Transaction *database.Tx     `json:"transaction,omitempty"`
}

// NewSyncRequest constructs a request for the full chain of a peer.
func NewSyncRequest(from string) Message {
	return Message{
		Type: TypeSyncRequest,
		From: from,
	}
}

// NewSyncResponse constructs a response carrying the full chain.
func NewSyncResponse(chain []database.Block) Message {
	return Message{
		Type:  TypeSyncResponse,
		Chain: chain,
	}
}

// NewBlock constructs an announcement of a newly mined block.
func NewBlock(block database.Block) Message {
	return Message{
		Type:  TypeNewBlock,
		Block: &block,
	}
}

// NewTransaction constructs an announcement of a new transaction.
func NewTransaction(tx database.Tx) Message {
	return Message{
		Type:        TypeNewTransaction,
		Transaction: &tx,
	}
}

// Validate checks the message type is known and its payload is present.
func (m Message) Validate() error {
	switch m.Type {
	case TypeSyncRequest:
		return nil

	case TypeSyncResponse:
		if len(m.Chain) == 0 {
			return fmt.Errorf("%w: %s without a chain", ErrInvalidMessage, m.Type)
		}

	case TypeNewBlock:
		if m.Block == nil {
			return fmt.Errorf("%w: %s without a block", ErrInvalidMessage, m.Type)
		}

	case TypeNewTransaction:
		if m.Transaction == nil {
			return fmt.Errorf("%w: %s without a transaction", ErrInvalidMessage, m.Type)
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}

	return nil
}

// =============================================================================

// Decode reads one message from the reader. No more than MaxFrameSize
// bytes are consumed.
func Decode(r io.Reader) (Message, error) {
	var msg Message
	if err := json.NewDecoder(io.LimitReader(r, MaxFrameSize)).Decode(&msg); err != nil {
		return Message{}, fmt.Errorf("decode: %w", err)
	}

	if err := msg.Validate(); err != nil {
		return Message{}, err
	}

	return msg, nil
}

// Encode writes the message to the writer as a single JSON document with
// no trailing newline.
func Encode(w io.Writer, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}
