package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/node"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/peterh/liner"
)

// randomTxAmount is the amount used by tx when no arguments are given.
const randomTxAmount = 10.0

const usage = "Unknown command. Type 'mine', 'tx', 'info', 'chain', 'peers', 'connect', 'balance' or 'quit'"

// console runs the interactive commands against an embedded node.
type console struct {
	node   *node.Node
	wallet wallet.Wallet
	out    io.Writer
}

func newConsole(n *node.Node, w wallet.Wallet, out io.Writer) *console {
	return &console{
		node:   n,
		wallet: w,
		out:    out,
	}
}

// loop reads commands until quit or the end of the input.
func (c *console) loop(ctx context.Context, in io.Reader) error {
	c.help()

	if stdinIsTerminal(in) {
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		for {
			input, err := line.Prompt("> ")
			if err != nil {
				if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
					fmt.Fprintln(c.out, "Goodbye!")
					return nil
				}
				return err
			}
			line.AppendHistory(input)

			if c.execute(ctx, input) {
				return nil
			}
		}
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if c.execute(ctx, scanner.Text()) {
			return nil
		}
	}

	return scanner.Err()
}

func (c *console) help() {
	fmt.Fprintln(c.out, "Commands:")
	fmt.Fprintln(c.out, "  mine                 mine a new block")
	fmt.Fprintln(c.out, "  tx [to amount]       create a transaction")
	fmt.Fprintln(c.out, "  info                 show node info")
	fmt.Fprintln(c.out, "  chain                print the chain")
	fmt.Fprintln(c.out, "  peers                list the known peers")
	fmt.Fprintln(c.out, "  connect host:port    connect to a peer")
	fmt.Fprintln(c.out, "  balance address      show the balance of an address")
	fmt.Fprintln(c.out, "  quit                 exit")
}

// execute runs a single command line. It reports true when the console
// should exit.
func (c *console) execute(ctx context.Context, input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}

	st := c.node.State()

	switch fields[0] {
	case "mine":
		block, err := c.node.MineBlock(ctx)
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			fmt.Fprintln(c.out, "No transactions to mine")
		case err != nil:
			fmt.Fprintf(c.out, "Mining failed: %s\n", err)
		default:
			fmt.Fprintf(c.out, "Mined block %d: %s\n", block.Index, block.Hash)
		}

	case "tx":
		tx, err := c.newTx(fields[1:])
		if err != nil {
			fmt.Fprintf(c.out, "Invalid transaction: %s\n", err)
			return false
		}

		if err := c.node.SubmitTransaction(ctx, tx); err != nil {
			fmt.Fprintf(c.out, "Transaction rejected: %s\n", err)
			return false
		}
		fmt.Fprintf(c.out, "Transaction added to mempool: %s\n", tx)

	case "info":
		fmt.Fprintln(c.out, c.node.Info())
		fmt.Fprintf(c.out, "Status: %s\n", st.Stats())

	case "chain":
		printChain(c.out, st.RetrieveBlocks())

	case "peers":
		for _, p := range c.node.RetrieveKnownPeers() {
			fmt.Fprintln(c.out, p.Host)
		}

	case "connect":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "Usage: connect host:port")
			return false
		}

		if err := c.node.ConnectToPeer(ctx, fields[1]); err != nil {
			fmt.Fprintf(c.out, "Connect failed: %s\n", err)
			return false
		}
		fmt.Fprintf(c.out, "Connected to %s, blocks: %d\n", fields[1], st.QueryChainLength())

	case "balance":
		address := c.wallet.Address()
		if len(fields) > 1 {
			address = fields[1]
		}
		fmt.Fprintf(c.out, "%s -> %s\n", address, database.FormatAmount(st.QueryBalance(address)))

	case "quit", "exit":
		fmt.Fprintln(c.out, "Goodbye!")
		return true

	default:
		fmt.Fprintln(c.out, usage)
	}

	return false
}

// newTx builds a signed transaction. Without arguments a pair of throw away
// wallets exchange a fixed amount, otherwise the console wallet sends the
// amount to the address.
func (c *console) newTx(args []string) (database.Tx, error) {
	switch len(args) {
	case 0:
		from, err := wallet.New()
		if err != nil {
			return database.Tx{}, err
		}

		to, err := wallet.New()
		if err != nil {
			return database.Tx{}, err
		}

		return from.NewTx(to.Address(), randomTxAmount)

	case 2:
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return database.Tx{}, fmt.Errorf("amount %q: %w", args[1], err)
		}

		return c.wallet.NewTx(args[0], amount)
	}

	return database.Tx{}, errors.New("usage: tx [to amount]")
}
