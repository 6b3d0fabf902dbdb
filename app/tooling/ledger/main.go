// Package main provides the ledger tooling: running an interactive node and
// managing wallets against a running node service.
package main

import "github.com/ardanlabs/ledger/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
