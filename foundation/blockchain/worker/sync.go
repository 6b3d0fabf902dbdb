package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// Sync connects to every known peer and merges their chains. A peer that
// can't be reached is retried a fixed number of times with a fixed delay.
// A genesis mismatch is not retried.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	for _, peer := range w.node.RetrieveKnownPeers() {
		for attempt := 1; attempt <= w.retries; attempt++ {
			err := w.node.ConnectToPeer(context.Background(), peer.Host)
			if err == nil {
				w.evHandler("worker: sync: %s: connected: attempt[%d]", peer.Host, attempt)
				break
			}

			w.evHandler("worker: sync: %s: attempt[%d/%d]: ERROR: %s", peer.Host, attempt, w.retries, err)

			if errors.Is(err, state.ErrGenesisMismatch) || attempt == w.retries {
				break
			}

			select {
			case <-time.After(w.retryDelay):
			case <-w.shut:
				return
			}
		}
	}
}
