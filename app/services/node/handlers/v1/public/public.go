// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/node"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Node *node.Node
	NS   *nameservice.NameService
	WS   websocket.Upgrader
	Evts *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection. The
	// upgrader has already replied to the client on failure.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return nil
	}
	defer c.Close()

	// This provides a channel for receiving events from the node.
	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	// This keeps the client socket connection open.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:

			// If the channel is closed, release the websocket.
			if !wd {
				return nil
			}

			// The connection is hijacked so a failed write means the
			// client is gone and there is nothing left to respond to.
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				h.Log.Infow("events", "traceid", v.TraceID, "status", "client disconnected", "ERROR", err)
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns the status of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	status := Status{
		PeerStatus: h.Node.Status(),
		Stats:      h.Node.State().Stats(),
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.Node.State().RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Blocks returns the blocks in the specified range or the whole chain when
// no range is given. Either end of the range can be "latest".
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := h.Node.State()

	fromStr := web.Param(r, "from")
	toStr := web.Param(r, "to")

	if fromStr == "" && toStr == "" {
		return web.Respond(ctx, w, toBlocks(h.NS, st.RetrieveBlocks()), http.StatusOK)
	}

	latest := st.RetrieveLatestBlock().Index

	from, err := blockNumber(fromStr, latest)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	to, err := blockNumber(toStr, latest)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks := st.QueryBlocksByNumber(from, to)
	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toBlocks(h.NS, blocks), http.StatusOK)
}

// BlocksByAddress returns the blocks holding transactions for the address.
func (h Handlers) BlocksByAddress(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.Node.State().QueryBlocksByAddress(web.Param(r, "address"))
	if err != nil {
		return fmt.Errorf("query blocks: %w", err)
	}

	if len(blocks) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, toBlocks(h.NS, blocks), http.StatusOK)
}

// Balance returns the balance of the address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	bal := Balance{
		Address: address,
		Name:    h.NS.Lookup(address),
		Balance: h.Node.State().QueryBalance(address),
	}

	return web.Respond(ctx, w, bal, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	txs := h.Node.State().RetrieveMempool()
	return web.Respond(ctx, w, toTxs(h.NS, txs), http.StatusOK)
}

// SubmitTransaction adds a new signed transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx NewTx
	if err := web.Decode(r, &ntx); err != nil {
		return err
	}

	tx := toDBTx(ntx)

	h.Log.Infow("add user tran", "traceid", v.TraceID, "tx", tx.String())
	if err := h.Node.SubmitTransaction(ctx, tx); err != nil {
		return errs.FromLedger(err)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to mempool",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine mines a block from the mempool and announces it to the peers.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, err := h.Node.MineBlock(ctx)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, toBlock(h.NS, block), http.StatusOK)
}

// Peers returns the set of known peers.
func (h Handlers) Peers(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Node.RetrieveKnownPeers(), http.StatusOK)
}

// ConnectPeer registers a new peer and syncs the chain from it.
func (h Handlers) ConnectPeer(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var cp ConnectPeer
	if err := web.Decode(r, &cp); err != nil {
		return err
	}

	if err := h.Node.ConnectToPeer(ctx, cp.Host); err != nil {
		if err := errs.FromLedger(err); errs.IsTrusted(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadGateway)
	}

	return web.Respond(ctx, w, h.Node.Status(), http.StatusOK)
}

// =============================================================================

// blockNumber parses a block number, "latest" maps to the index of the
// latest block.
func blockNumber(s string, latest uint64) (uint64, error) {
	if s == "latest" {
		return latest, nil
	}

	num, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block number %q", s)
	}

	return num, nil
}
