package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/ledger/app/services/node/handlers"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/node"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/worker"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/logger"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:60s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CORSOrigins     []string      `conf:"default:*"`
		}
		Node struct {
			ID                 string        `conf:"default:node1"`
			P2PHost            string        `conf:"default:0.0.0.0:3000"`
			KnownPeers         []string      `conf:"help:peer hosts separated by ;"`
			SelectStrategy     string        `conf:"default:fifo"`
			AutoMine           bool          `conf:"default:true"`
			Timeout            time.Duration `conf:"default:5s"`
			SyncRetries        int           `conf:"default:5"`
			SyncRetryDelay     time.Duration `conf:"default:2s"`
			PeerUpdateInterval time.Duration `conf:"default:1m"`
		}
		Genesis struct {
			Path string `conf:"help:optional genesis file, defaults are used when empty"`
			Date string `conf:"default:2024-01-01T00:00:00Z,help:pins the genesis block time when the file doesn't"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	fmt.Println(`  _     _____ ____   ____ _____ ____  `)
	fmt.Println(` | |   | ____|  _ \ / ___| ____|  _ \ `)
	fmt.Println(` | |   |  _| | | | | |  _|  _| | |_) |`)
	fmt.Println(` | |___| |___| |_| | |_| | |___|  _ < `)
	fmt.Println(` |_____|_____|____/ \____|_____|_| \_\`)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	// The names come from the key file names in the name service folder.
	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	for address, name := range ns.Copy() {
		log.Infow("startup", "status", "nameservice", "name", name, "address", address)
	}

	// =========================================================================
	// Blockchain Support

	gen := genesis.Default()
	if cfg.Genesis.Path != "" {
		gen, err = genesis.Load(cfg.Genesis.Path)
		if err != nil {
			return fmt.Errorf("unable to load genesis: %w", err)
		}
	}

	// Nodes only share a chain when they derive the same genesis block.
	if gen.Date.IsZero() && cfg.Genesis.Date != "" {
		gen.Date, err = time.Parse(time.RFC3339, cfg.Genesis.Date)
		if err != nil {
			return fmt.Errorf("parsing genesis date: %w", err)
		}
	}

	// A peer set is a collection of known nodes in the network so transactions
	// and blocks can be shared.
	peerSet := peer.NewPeerSet()
	for _, host := range cfg.Node.KnownPeers {
		peerSet.Add(peer.New(host))
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	st, err := state.New(state.Config{
		Genesis:        gen,
		SelectStrategy: cfg.Node.SelectStrategy,
		EvHandler:      ev,
	})
	if err != nil {
		return err
	}

	n, err := node.New(node.Config{
		ID:         cfg.Node.ID,
		Host:       cfg.Node.P2PHost,
		State:      st,
		KnownPeers: peerSet,
		Timeout:    cfg.Node.Timeout,
		EvHandler:  ev,
	})
	if err != nil {
		return err
	}

	if err := n.Start(); err != nil {
		return fmt.Errorf("starting p2p server: %w", err)
	}
	log.Infow("startup", "status", "p2p server started", "host", n.Host())

	// The worker syncs with the known peers and then runs mining, transaction
	// sharing and peer updates. The worker registers itself with the node.
	wrk := worker.Run(n, worker.Config{
		AutoMine:           cfg.Node.AutoMine,
		PeerUpdateInterval: cfg.Node.PeerUpdateInterval,
		SyncRetries:        cfg.Node.SyncRetries,
		SyncRetryDelay:     cfg.Node.SyncRetryDelay,
		EvHandler:          ev,
	})

	log.Infow("startup", "status", "node ready", "info", n.Info())

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	debugMux := handlers.DebugMux(build, log, n)

	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:    shutdown,
		Log:         log,
		Node:        n,
		NS:          ns,
		Evts:        evts,
		CORSOrigins: cfg.Web.CORSOrigins,
	})

	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Stop mining and the background workflows first.
		log.Infow("shutdown", "status", "shutdown worker")
		wrk.Shutdown()

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		log.Infow("shutdown", "status", "shutdown p2p server started")
		if err := n.Shutdown(ctx); err != nil {
			return fmt.Errorf("could not stop p2p server gracefully: %w", err)
		}

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
