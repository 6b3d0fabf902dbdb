package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/p2p"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// ErrUnexpectedResponse is returned when a peer answers a sync request with
// something other than its chain.
var ErrUnexpectedResponse = errors.New("unexpected response")

// ConnectToPeer registers the host as a known peer, requests its chain and
// merges the blocks that extend the local chain. The host is registered
// even if the exchange fails.
func (n *Node) ConnectToPeer(ctx context.Context, host string) error {
	n.evHandler("node: ConnectToPeer: started: host[%s]", host)
	defer n.evHandler("node: ConnectToPeer: completed: host[%s]", host)

	n.AddKnownPeer(peer.New(host))

	resp, err := p2p.Request(ctx, host, p2p.NewSyncRequest(n.id), n.timeout)
	if err != nil {
		return fmt.Errorf("sync request: %w", err)
	}

	if resp.Type != p2p.TypeSyncResponse {
		return fmt.Errorf("%w: got %s, exp %s", ErrUnexpectedResponse, resp.Type, p2p.TypeSyncResponse)
	}

	applied, err := n.state.MergeChain(resp.Chain)
	if err != nil {
		return fmt.Errorf("merge chain from %s: %w", host, err)
	}

	n.evHandler("node: ConnectToPeer: host[%s]: applied[%d]: length[%d]", host, applied, n.state.QueryChainLength())

	if applied > 0 {
		n.cancelMining()
	}

	return nil
}

// SyncWithPeers runs ConnectToPeer against every known peer. Failures are
// logged and the remaining peers are still processed.
func (n *Node) SyncWithPeers(ctx context.Context) {
	for _, peer := range n.RetrieveKnownPeers() {
		if err := n.ConnectToPeer(ctx, peer.Host); err != nil {
			n.evHandler("node: SyncWithPeers: host[%s]: ERROR: %s", peer.Host, err)
		}
	}
}

// AddKnownPeer provides the ability to add a new peer.
func (n *Node) AddKnownPeer(peer peer.Peer) bool {
	return n.knownPeers.Add(peer)
}

// RemoveKnownPeer provides the ability to remove a peer.
func (n *Node) RemoveKnownPeer(peer peer.Peer) {
	n.knownPeers.Remove(peer)
}

// RetrieveKnownPeers retrieves a copy of the known peer list, leaving out
// this node.
func (n *Node) RetrieveKnownPeers() []peer.Peer {
	return n.knownPeers.Copy(n.Host())
}

// =============================================================================

// cancelMining stops a mining operation in flight, if any.
func (n *Node) cancelMining() {
	w := n.Worker()
	if w == nil {
		return
	}

	done := w.SignalCancelMining()
	done()
}
