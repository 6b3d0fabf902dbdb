package cmd

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// chainCmd represents the chain command.
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the chain held by a node",
	RunE: func(cmd *cobra.Command, args []string) error {
		var blocks []database.Block
		if err := call(cmd.Context(), http.MethodGet, "/v1/blocks/list", nil, &blocks); err != nil {
			return err
		}

		printChain(cmd.OutOrStdout(), blocks)
		return nil
	},
}

// statusCmd represents the status command.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of a node",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status public.Status
		if err := call(cmd.Context(), http.MethodGet, "/v1/status", nil, &status); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Node: %s | Latest: %d %s\n", status.ID, status.LatestBlockIndex, status.LatestBlockHash)
		fmt.Fprintln(out, status.Stats)
		for _, p := range status.KnownPeers {
			fmt.Fprintf(out, "Peer: %s\n", p.Host)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(statusCmd)
}

// =============================================================================

// printChain renders the blocks as a table, one row per transaction.
func printChain(w io.Writer, blocks []database.Block) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Index", "Time", "Hash", "Prev Hash", "Nonce", "Transactions"})
	table.SetAutoWrapText(false)

	for _, block := range blocks {
		txs := make([]string, len(block.Transactions))
		for i, tx := range block.Transactions {
			txs[i] = tx.String()
		}

		table.Append([]string{
			strconv.FormatUint(block.Index, 10),
			time.Unix(int64(block.TimeStamp), 0).UTC().Format(time.RFC3339),
			short(block.Hash),
			short(block.PrevHash),
			strconv.FormatUint(block.Nonce, 10),
			strings.Join(txs, "\n"),
		})
	}

	table.Render()
}

// short truncates a hash for display.
func short(hash string) string {
	const size = 16
	if len(hash) <= size {
		return hash
	}
	return hash[:size] + "..."
}
