// Package node wraps the blockchain state behind the peer to peer protocol.
// A node answers sync requests, accepts blocks and transactions announced
// by peers and announces its own blocks and transactions to the peers it
// knows about.
package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/p2p"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// EventHandler defines a function that is called when events
// occur in the processing of the node.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and transaction sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalShareTx(tx database.Tx)
}

// =============================================================================

// Config represents the configuration required to start a node.
type Config struct {
	ID         string
	Host       string
	State      *state.State
	KnownPeers *peer.PeerSet
	Timeout    time.Duration
	EvHandler  EventHandler
}

// Node manages the blockchain state on the network.
type Node struct {
	id         string
	state      *state.State
	knownPeers *peer.PeerSet
	timeout    time.Duration
	evHandler  EventHandler
	server     *p2p.Server

	workerMu sync.RWMutex
	worker   Worker
}

// New constructs a node. The p2p server isn't listening until Start
// is called.
func New(cfg Config) (*Node, error) {
	if cfg.State == nil {
		return nil, fmt.Errorf("node %q: state is required", cfg.ID)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = p2p.DefaultTimeout
	}

	n := Node{
		id:         cfg.ID,
		state:      cfg.State,
		knownPeers: knownPeers,
		timeout:    timeout,
		evHandler:  ev,
	}

	n.server = p2p.NewServer(p2p.ServerConfig{
		Host:      cfg.Host,
		Handler:   n.handleMessage,
		Timeout:   timeout,
		EvHandler: ev,
	})

	// The Worker is not set here. The call to worker.Run will register
	// itself and start everything up and running for the node.

	return &n, nil
}

// RegisterWorker sets the worker that mines and shares transactions for
// the node. Peer messages can be handled while it is being registered.
func (n *Node) RegisterWorker(w Worker) {
	n.workerMu.Lock()
	defer n.workerMu.Unlock()

	n.worker = w
}

// Worker returns the registered worker or nil.
func (n *Node) Worker() Worker {
	n.workerMu.RLock()
	defer n.workerMu.RUnlock()

	return n.worker
}

// Start begins listening for peer connections.
func (n *Node) Start() error {
	n.evHandler("node: Start: id[%s]", n.id)

	return n.server.Start()
}

// Shutdown cleanly brings the node down.
func (n *Node) Shutdown(ctx context.Context) error {
	n.evHandler("node: Shutdown: started")
	defer n.evHandler("node: Shutdown: completed")

	// Stop all blockchain writing activity.
	if w := n.Worker(); w != nil {
		w.Shutdown()
	}

	return n.server.Shutdown(ctx)
}

// ID returns the identity of the node.
func (n *Node) ID() string {
	return n.id
}

// Host returns the address the node listens on for peers.
func (n *Node) Host() string {
	return n.server.Addr()
}

// State returns the blockchain state managed by the node.
func (n *Node) State() *state.State {
	return n.state
}

// =============================================================================

// MineBlock mines a new block from the mempool and announces it to the
// known peers.
func (n *Node) MineBlock(ctx context.Context) (database.Block, error) {
	block, err := n.state.MineNewBlock(ctx)
	if err != nil {
		return database.Block{}, err
	}

	n.BroadcastBlock(ctx, block)

	return block, nil
}

// SubmitTransaction adds the transaction to the mempool and shares it with
// the known peers.
func (n *Node) SubmitTransaction(ctx context.Context, tx database.Tx) error {
	if err := n.state.UpsertMempool(tx); err != nil {
		return err
	}

	w := n.Worker()
	if w == nil {
		n.BroadcastTx(ctx, tx)
		return nil
	}

	w.SignalShareTx(tx)
	w.SignalStartMining()

	return nil
}

// =============================================================================

// Info returns a one line summary of the node.
func (n *Node) Info() string {
	return fmt.Sprintf("Node: %s | Blocks: %d | Chain valid: %t | Peers: %d",
		n.id,
		n.state.QueryChainLength(),
		n.state.IsChainValid(),
		n.knownPeers.Count(),
	)
}

// Status returns the status of the node as seen by a peer.
func (n *Node) Status() peer.PeerStatus {
	latest := n.state.RetrieveLatestBlock()

	return peer.PeerStatus{
		ID:               n.id,
		LatestBlockHash:  latest.Hash,
		LatestBlockIndex: latest.Index,
		ChainLength:      n.state.QueryChainLength(),
		KnownPeers:       n.RetrieveKnownPeers(),
	}
}
