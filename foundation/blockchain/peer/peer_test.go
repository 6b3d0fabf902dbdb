package peer_test

import (
	"sync"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/google/go-cmp/cmp"
)

func Test_CRUD(t *testing.T) {
	type table struct {
		name  string
		peers []peer.Peer
	}

	tt := []table{
		{
			name:  "basic",
			peers: []peer.Peer{{Host: "host3"}, {Host: "host1"}, {Host: "host2"}},
		},
		{
			name:  "duplicates",
			peers: []peer.Peer{{Host: "host1"}, {Host: "host1"}, {Host: "host2"}, {Host: "host3"}},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			ps := peer.NewPeerSet()

			for _, peer := range tst.peers {
				ps.Add(peer)
			}

			exp := []peer.Peer{{Host: "host1"}, {Host: "host2"}, {Host: "host3"}}

			peers := ps.Copy("")
			if diff := cmp.Diff(exp, peers); diff != "" {
				t.Logf("Test %s:\tdiff:\n%s", tst.name, diff)
				t.Fatalf("Test %s:\tShould get back the right peers in host order.", tst.name)
			}

			peers = ps.Copy("host2")
			if len(peers) != len(exp)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, len(peers))
				t.Logf("Test %s:\texp: %d", tst.name, len(exp)-1)
				t.Fatalf("Test %s:\tShould get back the right peers.", tst.name)
			}

			ps.Remove(peer.New("host1"))
			if ps.Count() != len(exp)-1 {
				t.Logf("Test %s:\tgot: %d", tst.name, ps.Count())
				t.Logf("Test %s:\texp: %d", tst.name, len(exp)-1)
				t.Fatalf("Test %s:\tShould be able to remove a peer.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_AddReportsNew(t *testing.T) {
	ps := peer.NewPeerSet()

	if !ps.Add(peer.New("host1")) {
		t.Fatalf("Should report a new peer.")
	}

	if ps.Add(peer.New("host1")) {
		t.Fatalf("Should not report a known peer as new.")
	}
}

func Test_ConcurrentAdd(t *testing.T) {
	ps := peer.NewPeerSet()

	hosts := []string{"host1", "host2", "host3", "host4"}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps.Add(peer.New(hosts[i%len(hosts)]))
			ps.Copy("")
		}()
	}
	wg.Wait()

	if ps.Count() != len(hosts) {
		t.Fatalf("Should end with %d peers, got %d.", len(hosts), ps.Count())
	}
}
