package nameservice_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/google/go-cmp/cmp"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Lookup(t *testing.T) {
	root := t.TempDir()

	exp := make(map[string]string)
	for _, name := range []string{"alice", "bob"} {
		w, err := wallet.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a wallet: %s", failed, err)
		}
		if err := w.Save(filepath.Join(root, name+".ecdsa")); err != nil {
			t.Fatalf("\t%s\tShould be able to save a wallet: %s", failed, err)
		}
		exp[w.Address()] = name
	}

	if err := os.WriteFile(filepath.Join(root, "README.txt"), []byte("keys"), 0600); err != nil {
		t.Fatalf("\t%s\tShould be able to write a file: %s", failed, err)
	}

	t.Log("Given the need to name wallet addresses.")
	{
		ns, err := nameservice.New(root)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the folder: %s", failed, err)
		}

		if diff := cmp.Diff(exp, ns.Copy()); diff != "" {
			t.Fatalf("\t%s\tShould map every key file, diff:\n%s", failed, diff)
		}
		t.Logf("\t%s\tShould map every key file.", success)

		for address, name := range exp {
			if got := ns.Lookup(address); got != name {
				t.Fatalf("\t%s\tShould get %q, got %q.", failed, name, got)
			}
		}

		if got := ns.Lookup("02abcdef01"); got != "02abcdef01" {
			t.Fatalf("\t%s\tShould return unknown addresses as is, got %q.", failed, got)
		}
		t.Logf("\t%s\tShould look up names.", success)
	}

	for _, dir := range []string{"", filepath.Join(root, "missing")} {
		ns, err := nameservice.New(dir)
		if err != nil || len(ns.Copy()) != 0 {
			t.Fatalf("\t%s\tShould get an empty name service without a folder.", failed)
		}
	}
	t.Logf("\t%s\tShould get an empty name service without a folder.", success)
}
