package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sigroot/FW-LED-Applet-Interface/config"
	"github.com/sigroot/FW-LED-Applet-Interface/server"
	"github.com/sigroot/FW-LED-Applet-Interface/server/store"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config file")
	port := flag.Uint("port", 0, "Listen port (overrides config)")
	dbPath := flag.String("db", "", "SQLite path for frame persistence (overrides config)")
	verboseLogs := flag.Bool("verbose-logs", false, "Enable per-command logging")
	flag.Parse()

	server.SetVerboseLogging(*verboseLogs)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = uint16(*port)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	srv := server.NewServer(cfg.Addr(), server.NewPanel())

	if cfg.DBPath != "" {
		frames, err := store.Open(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open frame store: %v\n", err)
			os.Exit(1)
		}
		defer frames.Close()
		srv.SetFrameStore(frames)
	}

	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		os.Exit(1)
	}
	log.Printf("server: listening on %s", srv.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Printf("server: shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Printf("server: shutdown incomplete: %v", err)
	}
}
