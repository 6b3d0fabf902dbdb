package node

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/p2p"
)

// handleMessage dispatches a message received from a peer. Invalid blocks
// and transactions are dropped.
func (n *Node) handleMessage(ctx context.Context, msg p2p.Message) (*p2p.Message, error) {
	switch msg.Type {
	case p2p.TypeSyncRequest:
		n.evHandler("node: handleMessage: sync request: from[%s]", msg.From)

		resp := p2p.NewSyncResponse(n.state.RetrieveBlocks())
		return &resp, nil

	case p2p.TypeNewBlock:
		if err := n.state.ProcessProposedBlock(*msg.Block); err != nil {
			return nil, fmt.Errorf("dropped blk[%d]: %w", msg.Block.Index, err)
		}

		// The block in flight is now mined against a stale tail.
		n.cancelMining()

		if w := n.Worker(); w != nil && n.state.QueryMempoolLength() > 0 {
			w.SignalStartMining()
		}

		return nil, nil

	case p2p.TypeNewTransaction:
		if err := n.state.UpsertMempool(*msg.Transaction); err != nil {
			return nil, fmt.Errorf("dropped tx[%s]: %w", msg.Transaction, err)
		}

		if w := n.Worker(); w != nil {
			w.SignalStartMining()
		}

		return nil, nil
	}

	return nil, fmt.Errorf("%w: %q", p2p.ErrUnknownMessage, msg.Type)
}
