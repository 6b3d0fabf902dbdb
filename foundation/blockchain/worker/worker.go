// Package worker implements mining, peer updates, and transaction sharing for
// the blockchain.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/node"
)

// Default values for the worker configuration.
const (
	defaultPeerUpdateInterval = time.Minute
	defaultSyncRetries        = 5
	defaultSyncRetryDelay     = 2 * time.Second
	broadcastTimeout          = 30 * time.Second
)

// =============================================================================

// Config represents the configuration for the worker.
type Config struct {
	AutoMine           bool
	PeerUpdateInterval time.Duration
	SyncRetries        int
	SyncRetryDelay     time.Duration
	EvHandler          node.EventHandler
}

// Worker manages the POW workflows for the blockchain.
type Worker struct {
	node         *node.Node
	autoMine     bool
	retries      int
	retryDelay   time.Duration
	wg           sync.WaitGroup
	ticker       *time.Ticker
	shut         chan struct{}
	shutOnce     sync.Once
	startMining  chan bool
	cancelMining chan chan struct{}
	txSharing    chan database.Tx
	evHandler    node.EventHandler
}

// Run creates a worker, registers the worker with the node, and
// starts up all the background processes.
func Run(n *node.Node, cfg Config) *Worker {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	interval := cfg.PeerUpdateInterval
	if interval <= 0 {
		interval = defaultPeerUpdateInterval
	}

	retries := cfg.SyncRetries
	if retries <= 0 {
		retries = defaultSyncRetries
	}

	retryDelay := cfg.SyncRetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultSyncRetryDelay
	}

	w := Worker{
		node:         n,
		autoMine:     cfg.AutoMine,
		retries:      retries,
		retryDelay:   retryDelay,
		ticker:       time.NewTicker(interval),
		shut:         make(chan struct{}),
		startMining:  make(chan bool, 1),
		cancelMining: make(chan chan struct{}, 1),
		txSharing:    make(chan database.Tx, maxTxShareRequests),
		evHandler:    ev,
	}

	// Register this worker with the node.
	n.RegisterWorker(&w)

	// Update this node before starting any support G's.
	w.Sync()

	// Load the set of operations we need to run.
	operations := []func(){
		w.peerOperations,
		w.miningOperations,
		w.shareTxOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the node.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.shutOnce.Do(func() {
		w.evHandler("worker: shutdown: started")
		defer w.evHandler("worker: shutdown: completed")

		w.evHandler("worker: shutdown: stop ticker")
		w.ticker.Stop()

		w.evHandler("worker: shutdown: signal cancel mining")
		done := w.SignalCancelMining()
		done()

		w.evHandler("worker: shutdown: terminate goroutines")
		close(w.shut)
		w.wg.Wait()
	})
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	if !w.autoMine {
		return
	}

	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately. That G will not return from the function until done
// is called. This allows the caller to complete any state changes before a
// new mining operation takes place.
func (w *Worker) SignalCancelMining() (done func()) {
	wait := make(chan struct{})

	select {
	case w.cancelMining <- wait:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")

	return func() { close(wait) }
}

// SignalShareTx signals a share transaction operation. If
// maxTxShareRequests signals exist in the channel, we won't send these.
func (w *Worker) SignalShareTx(tx database.Tx) {
	select {
	case w.txSharing <- tx:
		w.evHandler("worker: SignalShareTx: share Tx signaled")
	default:
		w.evHandler("worker: SignalShareTx: queue full, transactions won't be shared.")
	}
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
