package node

import (
	"context"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/p2p"
	"golang.org/x/sync/errgroup"
)

// maxBroadcast is the number of peers contacted at the same time.
const maxBroadcast = 10

// BroadcastBlock announces the block to every known peer.
func (n *Node) BroadcastBlock(ctx context.Context, block database.Block) {
	n.evHandler("node: BroadcastBlock: blk[%d]: hash[%s]", block.Index, block.Hash)

	n.broadcast(ctx, p2p.NewBlock(block))
}

// BroadcastTx announces the transaction to every known peer.
func (n *Node) BroadcastTx(ctx context.Context, tx database.Tx) {
	n.evHandler("node: BroadcastTx: tx[%s]", tx)

	n.broadcast(ctx, p2p.NewTransaction(tx))
}

// broadcast opens one connection per known peer and writes the message.
// A peer that can't be reached misses the message.
func (n *Node) broadcast(ctx context.Context, msg p2p.Message) {
	var g errgroup.Group
	g.SetLimit(maxBroadcast)

	for _, peer := range n.RetrieveKnownPeers() {
		peer := peer
		g.Go(func() error {
			if err := p2p.Send(ctx, peer.Host, msg, n.timeout); err != nil {
				n.evHandler("node: broadcast: type[%s]: host[%s]: ERROR: %s", msg.Type, peer.Host, err)
				return nil
			}

			n.evHandler("node: broadcast: type[%s]: host[%s]: sent", msg.Type, peer.Host)
			return nil
		})
	}

	g.Wait()
}
