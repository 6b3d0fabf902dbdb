package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(walletPath); err == nil {
			return fmt.Errorf("wallet %s already exists", walletPath)
		}

		if err := os.MkdirAll(filepath.Dir(walletPath), 0755); err != nil {
			return err
		}

		w, err := wallet.New()
		if err != nil {
			return err
		}

		if err := w.Save(walletPath); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wallet:  %s\nAddress: %s\n", walletPath, w.Address())
		return nil
	},
}

// addressCmd represents the address command.
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address for the wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := wallet.Load(walletPath)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), w.Address())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(addressCmd)
}
