package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/ledger/foundation/blockchain/node"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func startNode(t *testing.T) *node.Node {
	gen := genesis.Default()
	gen.Date = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	st, err := state.New(state.Config{
		Genesis:        gen,
		SelectStrategy: selector.StrategyFIFO,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	n, err := node.New(node.Config{
		ID:      "Alice",
		Host:    "127.0.0.1:0",
		State:   st,
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the node: %s", err)
	}

	if err := n.Start(); err != nil {
		t.Fatalf("Should be able to start the node: %s", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n.Shutdown(ctx)
	})

	return n
}

// =============================================================================

func Test_Console(t *testing.T) {
	n := startNode(t)

	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to generate a wallet: %s", err)
	}

	var out bytes.Buffer
	c := newConsole(n, w, &out)

	input := strings.Join([]string{
		"mine",
		"tx",
		"tx B 2.5",
		"tx B zero",
		"mine",
		"info",
		"balance",
		"chain",
		"dance",
		"quit",
		"mine",
	}, "\n")

	t.Log("Given the need to drive a node from the console.")
	{
		if err := c.loop(context.Background(), strings.NewReader(input)); err != nil {
			t.Fatalf("\t%s\tShould run the commands: %s", failed, err)
		}

		got := out.String()

		checks := []string{
			"No transactions to mine",
			"Transaction added to mempool",
			"Invalid transaction",
			"Mined block 1:",
			"Node: Alice | Blocks: 2 | Chain valid: true",
			"Status: Blocks: 2 | Valid: true",
			w.Address() + " -> -2.5",
			"Unknown command.",
			"Goodbye!",
		}
		for _, check := range checks {
			if !strings.Contains(got, check) {
				t.Fatalf("\t%s\tShould print %q, got:\n%s", failed, check, got)
			}
		}
		t.Logf("\t%s\tShould run every command.", success)

		if n.State().QueryChainLength() != 2 {
			t.Fatalf("\t%s\tShould stop reading after quit, got length %d.", failed, n.State().QueryChainLength())
		}
		t.Logf("\t%s\tShould stop reading after quit.", success)
	}
}

func Test_Commands(t *testing.T) {
	n := startNode(t)

	ns, err := nameservice.New("")
	if err != nil {
		t.Fatalf("Should be able to construct the name service: %s", err)
	}

	srv := httptest.NewServer(handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		Node:     n,
		NS:       ns,
		Evts:     events.New(),
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "accounts", "alice.ecdsa")

	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append(args, "--url", srv.URL, "--wallet", path))
		err := rootCmd.Execute()
		return out.String(), err
	}

	t.Log("Given the need to manage wallets against a node.")
	{
		out, err := execute("generate")
		if err != nil || !strings.Contains(out, "Address:") {
			t.Fatalf("\t%s\tShould generate a wallet: %v %s", failed, err, out)
		}
		t.Logf("\t%s\tShould generate a wallet.", success)

		if _, err := execute("generate"); err == nil {
			t.Fatalf("\t%s\tShould not overwrite a wallet.", failed)
		}
		t.Logf("\t%s\tShould not overwrite a wallet.", success)

		out, err = execute("send", "--to", "B", "--amount", "5")
		if err != nil || !strings.Contains(out, "transaction added to mempool") {
			t.Fatalf("\t%s\tShould send a transaction: %v %s", failed, err, out)
		}

		if n.State().QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould reach the node mempool.", failed)
		}
		t.Logf("\t%s\tShould send a transaction.", success)

		if _, err := execute("send", "--to", "B", "--amount", "0"); err == nil {
			t.Fatalf("\t%s\tShould reject a zero amount.", failed)
		}
		t.Logf("\t%s\tShould reject a zero amount.", success)

		if _, err := n.MineBlock(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould be able to mine: %s", failed, err)
		}

		out, err = execute("chain")
		if err != nil || !strings.Contains(out, "GENESIS->GENESIS:0") || !strings.Contains(out, "->B:5") {
			t.Fatalf("\t%s\tShould print the chain: %v %s", failed, err, out)
		}
		t.Logf("\t%s\tShould print the chain.", success)

		out, err = execute("status")
		if err != nil || !strings.Contains(out, "Node: Alice | Latest: 1") {
			t.Fatalf("\t%s\tShould print the status: %v %s", failed, err, out)
		}
		t.Logf("\t%s\tShould print the status.", success)
	}
}
