package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/node"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// role describes the identity and wiring of a demo node.
type role struct {
	id   string
	host string
	peer string
}

// roles maps the demo role names to their settings. Alice and Bob know
// each other, Charlie joins through Alice.
var roles = map[string]role{
	"alice":   {id: "Alice", host: "0.0.0.0:3000", peer: "127.0.0.1:3001"},
	"bob":     {id: "Bob", host: "0.0.0.0:3001", peer: "127.0.0.1:3000"},
	"charlie": {id: "Charlie", host: "0.0.0.0:3002", peer: "127.0.0.1:3000"},
}

var (
	roleName    string
	genesisPath string
	genesisDate string
	logPath     string
	autoMine    bool
)

// demoAmount is the amount of the first transaction mined on start.
const demoAmount = 50.0

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive node",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, exists := roles[roleName]
		if !exists {
			r = roles["alice"]
		}

		log := zap.NewNop().Sugar()
		if logPath != "" {
			var err error
			if log, err = logger.New("LEDGER", logPath); err != nil {
				return err
			}
		}
		defer log.Sync()

		return runNode(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), log, r)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&roleName, "role", "r", "alice", "Demo role: alice, bob or charlie.")
	runCmd.Flags().StringVarP(&genesisPath, "genesis", "g", "", "Optional genesis file.")
	runCmd.Flags().StringVarP(&genesisDate, "genesis-date", "d", "2024-01-01T00:00:00Z", "Pins the genesis block time, empty uses the clock.")
	runCmd.Flags().StringVarP(&logPath, "log", "l", "", "File to write node events to.")
	runCmd.Flags().BoolVarP(&autoMine, "auto-mine", "m", false, "Mine in the background when transactions arrive.")
}

// =============================================================================

func runNode(ctx context.Context, in io.Reader, out io.Writer, log *zap.SugaredLogger, r role) error {
	fmt.Fprintln(out, "Ledger P2P network node")

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...), "node", r.id)
	}

	gen := genesis.Default()
	if genesisPath != "" {
		var err error
		if gen, err = genesis.Load(genesisPath); err != nil {
			return fmt.Errorf("unable to load genesis: %w", err)
		}
	}

	// Nodes only share a chain when they derive the same genesis block.
	if gen.Date.IsZero() && genesisDate != "" {
		date, err := time.Parse(time.RFC3339, genesisDate)
		if err != nil {
			return fmt.Errorf("parsing genesis date: %w", err)
		}
		gen.Date = date
	}

	st, err := state.New(state.Config{
		Genesis:        gen,
		SelectStrategy: "fifo",
		EvHandler:      ev,
	})
	if err != nil {
		return err
	}

	knownPeers := peer.NewPeerSet()
	knownPeers.Add(peer.New(r.peer))

	n, err := node.New(node.Config{
		ID:         r.id,
		Host:       r.host,
		State:      st,
		KnownPeers: knownPeers,
		Timeout:    5 * time.Second,
		EvHandler:  ev,
	})
	if err != nil {
		return err
	}

	if err := n.Start(); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		n.Shutdown(ctx)
	}()

	fmt.Fprintf(out, "Created node: %s listening on %s\n", r.id, n.Host())

	// Two wallets exchange a first transaction which is mined locally.
	sender, err := wallet.New()
	if err != nil {
		return err
	}

	receiver, err := wallet.New()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Wallet 1 address: %s\n", sender.Address())
	fmt.Fprintf(out, "Wallet 2 address: %s\n", receiver.Address())

	tx, err := sender.NewTx(receiver.Address(), demoAmount)
	if err != nil {
		return err
	}

	if err := st.UpsertMempool(tx); err != nil {
		return err
	}

	fmt.Fprintln(out, "Mining block...")
	block, err := st.MineNewBlock(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Chain validation: %t\n", st.IsChainValid())
	fmt.Fprintf(out, "Total blocks: %d\n", st.QueryChainLength())
	fmt.Fprintf(out, "Balances:\n  %s -> %s\n  %s -> %s\n",
		sender.Address(), database.FormatAmount(st.QueryBalance(sender.Address())),
		receiver.Address(), database.FormatAmount(st.QueryBalance(receiver.Address())),
	)
	fmt.Fprintln(out, n.Info())

	// The worker connects to the peer, retrying while it comes up.
	fmt.Fprintf(out, "Connecting to peer: %s\n", r.peer)
	worker.Run(n, worker.Config{
		AutoMine:  autoMine,
		EvHandler: ev,
	})

	// Announce what was produced before the peer was reachable.
	n.BroadcastBlock(ctx, block)
	n.BroadcastTx(ctx, tx)

	fmt.Fprintf(out, "Node [%s] is ready!\n", r.id)

	c := newConsole(n, sender, out)
	return c.loop(ctx, in)
}

// =============================================================================

// stdinIsTerminal reports whether the input is the process terminal, in
// which case line editing is used.
func stdinIsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok || f != os.Stdin {
		return false
	}

	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}
