package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount float64
)

// sendCmd represents the send command.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and submit a transaction to a node",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := wallet.Load(walletPath)
		if err != nil {
			return err
		}

		tx, err := w.NewTx(to, amount)
		if err != nil {
			return err
		}

		ntx := public.NewTx{
			From:      tx.From,
			To:        tx.To,
			Amount:    tx.Amount,
			TimeStamp: tx.TimeStamp,
			Signature: tx.Signature,
			PublicKey: tx.PublicKey,
		}

		data, err := json.Marshal(ntx)
		if err != nil {
			return err
		}

		var resp struct {
			Status string `json:"status"`
		}
		if err := call(cmd.Context(), http.MethodPost, "/v1/tx/submit", bytes.NewReader(data), &resp); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", tx, resp.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the receiving account.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.Flags().Float64VarP(&amount, "amount", "a", 0, "Amount to send.")
	sendCmd.MarkFlagRequired("amount")
}
