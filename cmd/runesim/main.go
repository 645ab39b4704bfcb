// RuneSim is a deterministic, tick-driven simulation of tile movement,
// agility training, prayers, and consumables.
// Usage: runesim [--version] [--plain] [--serve] [--config <file>] [data_directory]
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nathoo/runesim/cli"
	"github.com/nathoo/runesim/config"
	"github.com/nathoo/runesim/engine"
	"github.com/nathoo/runesim/loader"
	"github.com/nathoo/runesim/persistence"
	"github.com/nathoo/runesim/server"
	"github.com/nathoo/runesim/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	serve := false
	var configPath string
	var dataDir string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("runesim %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--serve":
			serve = true
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--config requires a file path\n")
				os.Exit(1)
			}
			i++
			configPath = args[i]
		default:
			if dataDir == "" {
				dataDir = args[i]
			}
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	// Load and compile Lua catalog content.
	defs, err := loader.Load(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	eng := engine.New(defs)

	var store *persistence.Store
	if cfg.DBPath != "" {
		store, err = persistence.Open(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening snapshot store: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	if serve {
		runServer(eng, store, cfg)
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng, store, cfg.Player)
		c.Tick = time.Duration(cfg.TickMillis) * time.Millisecond
		c.Run()
		return
	}

	if err := tui.Run(eng, store, cfg.Player); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(eng *engine.Engine, store *persistence.Store, cfg config.Config) {
	log, err := server.NewLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	srv := server.New(eng, store, log, server.Config{
		Tick:             time.Duration(cfg.TickMillis) * time.Millisecond,
		SnapshotInterval: time.Duration(cfg.SnapshotSeconds) * time.Second,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go srv.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.HandleWS)

	httpSrv := &http.Server{Addr: cfg.Listen, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Infow("listening", "addr", cfg.Listen)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorw("server stopped", "err", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
