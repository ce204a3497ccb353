package main

import (
	"bufio"
	"chat-relay/client"
	"chat-relay/domain"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/pflag"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddr   string `env:"SERVER_ADDR,default=127.0.0.1"`
	ServerPort   string `env:"SERVER_PORT,default=7878"`
	MaxFrameSize int    `env:"MAX_FRAME_SIZE,default=4096"`
	LogLevel     string `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	name := pflag.StringP("name", "n", "", "username to claim right after connecting")
	pflag.Parse()

	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	address := net.JoinHostPort(config.ServerAddr, config.ServerPort)
	c, err := client.Dial(ctx, address, config.MaxFrameSize)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing connection...")
		_ = c.Close()
	}()
	color.Info.Printf("Connected to %s. /name <username> to register, exit to quit.\n", address)

	if *name != "" {
		if err := c.SetUsername(*name); err != nil {
			return exitRuntime, err
		}
	}

	received := newTally()
	defer received.render(os.Stdout)

	errChan := make(chan error, 1)
	go func() { errChan <- receive(c, received) }()

	lines := make(chan string)
	go scan(lines)

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case err := <-errChan:
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		case line, ok := <-lines:
			if !ok || strings.EqualFold(line, "exit") {
				color.Info.Println("Disconnecting from the server...")
				return exitOK, nil
			}
			if err := send(c, line); err != nil {
				return exitRuntime, err
			}
		}
	}
}

func send(c *client.Client, line string) error {
	if rest, ok := strings.CutPrefix(line, "/name "); ok {
		return c.SetUsername(strings.TrimSpace(rest))
	}
	return c.Say(line)
}

func scan(lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines <- line
	}
}

func receive(c *client.Client, received *tally) error {
	for {
		frame, err := c.Next()
		if err != nil {
			return err
		}
		switch f := frame.(type) {
		case domain.UsernameAccepted:
			color.Success.Println("Username accepted")
		case domain.UsernameRejected:
			color.Warn.Printf("Username rejected: %s\n", f.Reason)
		case domain.Broadcast:
			received.add(f.FromUsername)
			fmt.Printf("%s %s\n", color.Cyan.Sprintf("[%s]", f.FromUsername), f.Text)
		}
	}
}
