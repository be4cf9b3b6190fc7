package main

import (
	"chat-shell/infrastructure/http/client"
	"chat-shell/internal"
	"chat-shell/projection"
	"chat-shell/repositories"
	"chat-shell/runtime"
	"chat-shell/services"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the session subsystem and hands stdin to the shell.
// Returning instead of exiting lets the deferred database close run.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Token store (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Debug("Closing BadgerDB...")
		_ = db.Close()
	}()
	tokens := repositories.NewTokenRepository(db, log)

	// 3. Session subsystem
	gateway := client.NewAuthGateway(log, config.APIURL, &http.Client{Timeout: config.APITimeout})
	messages := projection.NewMessageStore(log)
	manager := services.NewSessionManager(log, gateway, tokens, messages, runtime.NewRegistry())
	unsubscribe := manager.Subscribe(sessionPrinter(os.Stdout))
	defer unsubscribe()

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Restore the previous session, a failure only means logging in again
	if err := manager.Hydrate(ctx); err != nil {
		log.Info("Previous session not restored", "error", err)
	}

	// 6. Interactive loop
	fmt.Println("chat-shell connected to", config.APIURL, "- type help")
	shell := NewShell(log, os.Stdout, manager, messages)
	if err := shell.Run(ctx, os.Stdin); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	log.Debug("Program stopped cleanly")
	return nil
}
