package main

import (
	"chat-relay/contract"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the relay and blocks until a termination signal arrives.
// Keeping this out of main lets every defer run before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	config, err := internal.Load()
	if err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	mask, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Moderation
	filter, err := moderation.NewFilter(config.Words(), mask)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
	}

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Listener owned by the controller
	address := config.Address()
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	logger.Info("Relay listening", "address", listener.Addr().String())

	controller := runtime.NewController(logger, listener, filter, config.MailboxSize, config.MaxFrameSize)
	capacity := workers.NewChannelCapacityWorker(logger,
		[]contract.Gauge{controller.Inbox()},
		config.MetricInterval, config.LowCapacityThreshold)

	// 5. Supervision blocks until every worker returned
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(controller, capacity)
	sup.Run(ctx)

	logger.Info("Relay stopped cleanly")
	return exitOK, nil
}
