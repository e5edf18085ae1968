package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vctt94/holdem/internal/logging"
	"github.com/vctt94/holdem/pkg/server"
	"github.com/vctt94/holdem/internal/db"
)

func main() {
	var (
		dbPath        string
		logFile       string
		host          string
		port          int
		wsPort        int
		portFile      string
		seed          int64
		debugLevel    string
		startingChips int64
		smallBlind    int64
		bigBlind      int64
	)
	flag.StringVar(&dbPath, "db", "", "Path to SQLite database file (created if missing)")
	flag.StringVar(&logFile, "logfile", "", "If set, also write logs to this rotating file")
	flag.StringVar(&host, "host", "127.0.0.1", "Host to listen on")
	flag.IntVar(&port, "port", 0, "TCP port to listen on (0 for random free port)")
	flag.IntVar(&wsPort, "wsport", 0, "Websocket port to listen on (0 disables the websocket listener)")
	flag.StringVar(&portFile, "portfile", "", "If set, write selected TCP port to this file")
	flag.Int64Var(&seed, "seed", 0, "Deterministic RNG seed for decks (0 = random)")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.Int64Var(&startingChips, "startingchips", 1000, "Default starting chip stack")
	flag.Int64Var(&smallBlind, "smallblind", 10, "Default small blind")
	flag.Int64Var(&bigBlind, "bigblind", 20, "Default big blind")
	flag.Parse()

	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "holdem.sqlite")
	}

	store, err := db.NewDB(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	logBackend, err := logging.NewBackend(logFile, debugLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	defer logBackend.Close()

	if seed == 0 {
		// Allow env override for convenience
		if env := os.Getenv("HOLDEM_SEED"); env != "" {
			if v, err := strconv.ParseInt(env, 10, 64); err == nil {
				seed = v
			}
		}
	}

	srv, err := server.NewServer(server.Config{
		Store:         store,
		Log:           logBackend.Logger("SRVR"),
		GameLog:       logBackend.Logger("GAME"),
		StartingChips: startingChips,
		SmallBlind:    smallBlind,
		BigBlind:      bigBlind,
		Seed:          seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create server: %v\n", err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to listen: %v\n", err)
		os.Exit(1)
	}

	// Optionally write chosen port
	if portFile != "" {
		_, p, _ := net.SplitHostPort(lis.Addr().String())
		_ = os.WriteFile(portFile, []byte(p), 0600)
	}

	if wsPort != 0 {
		go func() {
			addr := fmt.Sprintf("%s:%d", host, wsPort)
			if err := http.ListenAndServe(addr, srv.WSHandler()); err != nil {
				fmt.Fprintf(os.Stderr, "websocket serve error: %v\n", err)
			}
		}()
	}

	if err := srv.Serve(lis); err != nil {
		fmt.Fprintf(os.Stderr, "serve error: %v\n", err)
		os.Exit(1)
	}
}
