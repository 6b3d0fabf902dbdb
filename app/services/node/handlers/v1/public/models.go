package public

import (
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/nameservice"
)

// Status is the response for the node status call.
type Status struct {
	peer.PeerStatus
	Stats state.Stats `json:"stats"`
}

// Balance is the response for the balance call.
type Balance struct {
	Address string  `json:"address"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// Tx is a transaction with names resolved for display.
type Tx struct {
	From      string  `json:"from"`
	FromName  string  `json:"from_name"`
	To        string  `json:"to"`
	ToName    string  `json:"to_name"`
	Amount    float64 `json:"amount"`
	TimeStamp uint64  `json:"timestamp"`
	Signature string  `json:"signature"`
	PublicKey string  `json:"public_key"`
}

// Block is a block with its transactions resolved for display.
type Block struct {
	Index        uint64 `json:"index"`
	TimeStamp    uint64 `json:"timestamp"`
	PrevHash     string `json:"prev_hash"`
	Hash         string `json:"hash"`
	Nonce        uint64 `json:"nonce"`
	Transactions []Tx   `json:"transactions"`
}

// NewTx is the payload for submitting a signed transaction.
type NewTx struct {
	From      string  `json:"from" validate:"required"`
	To        string  `json:"to" validate:"required"`
	Amount    float64 `json:"amount" validate:"gt=0"`
	TimeStamp uint64  `json:"timestamp"`
	Signature string  `json:"signature" validate:"required"`
	PublicKey string  `json:"public_key" validate:"required"`
}

// toDBTx converts the payload into a transaction. A missing timestamp is
// set to now.
func toDBTx(ntx NewTx) database.Tx {
	tx := database.Tx{
		From:      ntx.From,
		To:        ntx.To,
		Amount:    ntx.Amount,
		TimeStamp: ntx.TimeStamp,
		Signature: ntx.Signature,
		PublicKey: ntx.PublicKey,
	}

	if tx.TimeStamp == 0 {
		tx.TimeStamp = uint64(time.Now().UTC().Unix())
	}

	return tx
}

// ConnectPeer is the payload for connecting to a new peer.
type ConnectPeer struct {
	Host string `json:"host" validate:"required,hostname_port"`
}

// =============================================================================

func toTx(ns *nameservice.NameService, tx database.Tx) Tx {
	return Tx{
		From:      tx.From,
		FromName:  ns.Lookup(tx.From),
		To:        tx.To,
		ToName:    ns.Lookup(tx.To),
		Amount:    tx.Amount,
		TimeStamp: tx.TimeStamp,
		Signature: tx.Signature,
		PublicKey: tx.PublicKey,
	}
}

func toTxs(ns *nameservice.NameService, txs []database.Tx) []Tx {
	out := make([]Tx, len(txs))
	for i, tx := range txs {
		out[i] = toTx(ns, tx)
	}
	return out
}

func toBlock(ns *nameservice.NameService, block database.Block) Block {
	return Block{
		Index:        block.Index,
		TimeStamp:    block.TimeStamp,
		PrevHash:     block.PrevHash,
		Hash:         block.Hash,
		Nonce:        block.Nonce,
		Transactions: toTxs(ns, block.Transactions),
	}
}

func toBlocks(ns *nameservice.NameService, blocks []database.Block) []Block {
	out := make([]Block, len(blocks))
	for i, block := range blocks {
		out[i] = toBlock(ns, block)
	}
	return out
}
