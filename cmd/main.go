package main

import (
	"chat-hub/internal"
	"chat-hub/observability"
	"chat-hub/runtime"
	"chat-hub/runtime/workers"
	"chat-hub/services"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires configuration, adapters and the multiplexer, and returns once
// an interrupt or SIGTERM has stopped every worker.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Adapters
	adapters, err := internal.BuildAdapters(ctx, log, config)
	if err != nil {
		return err
	}

	// 4. Supervision & Multiplexing
	monitor := observability.NewMonitor(log)
	sup := workers.NewSupervisor(log, config.RestartInterval)
	handler := services.NewEchoService(log, monitor, config.StatusInterval)
	mux := runtime.NewMultiplexer(log, sup, runtime.NewRegistry(), handler, monitor, config.MetricInterval)
	if err := mux.Add(adapters...); err != nil {
		return fmt.Errorf("adapter registration failed: %w", err)
	}

	// 5. Run until stopped
	if err := mux.Start(ctx); err != nil {
		return fmt.Errorf("multiplexer failed to start: %w", err)
	}
	log.Info("Program stopped cleanly")
	return nil
}
