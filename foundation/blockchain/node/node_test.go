package node_test

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/ledger/foundation/blockchain/node"
	"github.com/ardanlabs/ledger/foundation/blockchain/p2p"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

var pinned = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func tran(from string, to string, amount float64) database.Tx {
	return database.Tx{
		From:      from,
		To:        to,
		Amount:    amount,
		TimeStamp: 1704067200,
		Signature: "sig",
		PublicKey: "key",
	}
}

func startNode(t *testing.T, id string, date time.Time) *node.Node {
	gen := genesis.Default()
	gen.Date = date

	st, err := state.New(state.Config{
		Genesis:        gen,
		SelectStrategy: selector.StrategyFIFO,
	})
	ifErrFailNow(t, err)

	n, err := node.New(node.Config{
		ID:      id,
		Host:    "127.0.0.1:0",
		State:   st,
		Timeout: 2 * time.Second,
	})
	ifErrFailNow(t, err)

	ifErrFailNow(t, n.Start())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n.Shutdown(ctx)
	})

	return n
}

// waitFor polls the condition until it holds or the time runs out.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

// =============================================================================

func Test_SyncAndBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to keep two nodes in sync.")
	{
		alice := startNode(t, "Alice", pinned)
		bob := startNode(t, "Bob", pinned)

		ifErrFailNow(t, alice.SubmitTransaction(ctx, tran("A", "B", 10)))
		_, err := alice.MineBlock(ctx)
		ifErrFailNow(t, err)

		if err := bob.ConnectToPeer(ctx, alice.Host()); err != nil {
			t.Fatalf("\t%s\tShould be able to connect to a peer: %v", failed, err)
		}

		if bob.State().QueryChainLength() != 2 {
			t.Fatalf("\t%s\tShould merge the peer chain, got length %d.", failed, bob.State().QueryChainLength())
		}
		t.Logf("\t%s\tShould merge the peer chain.", success)

		if alice.State().RetrieveLatestBlock().Hash != bob.State().RetrieveLatestBlock().Hash {
			t.Fatalf("\t%s\tShould share the same latest block.", failed)
		}
		t.Logf("\t%s\tShould share the same latest block.", success)

		// Alice learns about Bob so announcements flow both ways.
		alice.AddKnownPeer(peer.New(bob.Host()))

		tx := tran("B", "C", 5)
		ifErrFailNow(t, bob.SubmitTransaction(ctx, tx))

		if !waitFor(func() bool { return alice.State().QueryMempoolLength() == 1 }) {
			t.Fatalf("\t%s\tShould share the transaction with the peer.", failed)
		}
		t.Logf("\t%s\tShould share the transaction with the peer.", success)

		block, err := bob.MineBlock(ctx)
		ifErrFailNow(t, err)

		if !waitFor(func() bool { return alice.State().RetrieveLatestBlock().Hash == block.Hash }) {
			t.Fatalf("\t%s\tShould announce the mined block to the peer.", failed)
		}
		t.Logf("\t%s\tShould announce the mined block to the peer.", success)

		if !waitFor(func() bool { return alice.State().QueryMempoolLength() == 0 }) {
			t.Fatalf("\t%s\tShould remove the mined transaction from the peer mempool.", failed)
		}
		t.Logf("\t%s\tShould remove the mined transaction from the peer mempool.", success)

		if err := bob.ConnectToPeer(ctx, alice.Host()); err != nil {
			t.Fatalf("\t%s\tShould be able to sync again: %v", failed, err)
		}
		if bob.State().QueryChainLength() != 3 {
			t.Fatalf("\t%s\tShould not duplicate blocks on a second sync, got length %d.", failed, bob.State().QueryChainLength())
		}
		t.Logf("\t%s\tShould not duplicate blocks on a second sync.", success)
	}
}

func Test_GenesisMismatch(t *testing.T) {
	ctx := context.Background()

	alice := startNode(t, "Alice", pinned)
	charlie := startNode(t, "Charlie", pinned.Add(time.Hour))

	ifErrFailNow(t, alice.SubmitTransaction(ctx, tran("A", "B", 10)))
	_, err := alice.MineBlock(ctx)
	ifErrFailNow(t, err)

	err = charlie.ConnectToPeer(ctx, alice.Host())
	if !errors.Is(err, state.ErrGenesisMismatch) {
		t.Fatalf("\t%s\tShould get ErrGenesisMismatch, got %v.", failed, err)
	}

	if charlie.State().QueryChainLength() != 1 {
		t.Fatalf("\t%s\tShould leave the chain unchanged, got length %d.", failed, charlie.State().QueryChainLength())
	}
	t.Logf("\t%s\tShould abort the merge and leave the chain unchanged.", success)

	if len(charlie.RetrieveKnownPeers()) != 1 {
		t.Fatalf("\t%s\tShould register the peer even when the merge fails.", failed)
	}
	t.Logf("\t%s\tShould register the peer even when the merge fails.", success)
}

func Test_UnreachablePeer(t *testing.T) {
	ctx := context.Background()

	// Reserve a port and release it so nothing is listening there.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	ifErrFailNow(t, err)
	host := listener.Addr().String()
	listener.Close()

	alice := startNode(t, "Alice", pinned)

	if err := alice.ConnectToPeer(ctx, host); err == nil {
		t.Fatalf("\t%s\tShould fail to connect to an unreachable peer.", failed)
	}
	t.Logf("\t%s\tShould fail to connect to an unreachable peer.", success)

	if len(alice.RetrieveKnownPeers()) != 1 {
		t.Fatalf("\t%s\tShould register the unreachable peer.", failed)
	}

	ifErrFailNow(t, alice.SubmitTransaction(ctx, tran("A", "B", 10)))
	if _, err := alice.MineBlock(ctx); err != nil {
		t.Fatalf("\t%s\tShould mine and broadcast without failing: %v", failed, err)
	}
	t.Logf("\t%s\tShould swallow broadcast failures.", success)
}

func Test_DropInvalid(t *testing.T) {
	ctx := context.Background()

	alice := startNode(t, "Alice", pinned)

	bad := tran("A", "B", 0)
	ifErrFailNow(t, p2p.Send(ctx, alice.Host(), p2p.NewTransaction(bad), time.Second))

	block := database.Block{Index: 5, PrevHash: database.ZeroHash, Hash: "00"}
	ifErrFailNow(t, p2p.Send(ctx, alice.Host(), p2p.NewBlock(block), time.Second))

	// The valid transaction is sent last.
	ifErrFailNow(t, p2p.Send(ctx, alice.Host(), p2p.NewTransaction(tran("A", "B", 1)), time.Second))

	if !waitFor(func() bool { return alice.State().QueryMempoolLength() == 1 }) {
		t.Fatalf("\t%s\tShould accept the valid transaction.", failed)
	}

	time.Sleep(100 * time.Millisecond)

	if alice.State().QueryMempoolLength() != 1 || alice.State().QueryChainLength() != 1 {
		t.Fatalf("\t%s\tShould drop invalid messages, mempool %d, length %d.", failed, alice.State().QueryMempoolLength(), alice.State().QueryChainLength())
	}
	t.Logf("\t%s\tShould drop invalid messages.", success)
}

func Test_InfoAndStatus(t *testing.T) {
	alice := startNode(t, "Alice", pinned)
	alice.AddKnownPeer(peer.New("127.0.0.1:3001"))
	alice.AddKnownPeer(peer.New(alice.Host()))

	info := alice.Info()
	if !strings.HasPrefix(info, "Node: Alice | Blocks: 1 | Chain valid: true") {
		t.Fatalf("\t%s\tShould get the node info, got %q.", failed, info)
	}
	t.Logf("\t%s\tShould get the node info.", success)

	status := alice.Status()
	if status.ID != "Alice" || status.ChainLength != 1 || status.LatestBlockIndex != 0 {
		t.Fatalf("\t%s\tShould get the node status, got %+v.", failed, status)
	}

	if len(status.KnownPeers) != 1 || status.KnownPeers[0].Host != "127.0.0.1:3001" {
		t.Fatalf("\t%s\tShould leave the node itself out of the known peers, got %+v.", failed, status.KnownPeers)
	}
	t.Logf("\t%s\tShould get the node status.", success)
}
