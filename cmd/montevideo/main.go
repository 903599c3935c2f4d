package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Getenv, os.Getwd, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "montevideo: %v\n", err)
		os.Exit(1)
	}
}

// Load config: defaults, then '.env' file, then environment, then flags
// Run server until context cancelled
func run(ctx context.Context, getenv func(string) string, getwd func() (string, error), args []string) error {
	c := NewConfig()

	if err := c.LoadDotEnv(getwd); err != nil {
		return fmt.Errorf("can't load .env file. Err: %w", err)
	}
	if err := c.LoadEnv(getenv); err != nil {
		return fmt.Errorf("can't load environment. Err: %w", err)
	}
	if err := c.ParseFlags(args); err != nil {
		return fmt.Errorf("can't parse flags. Err: %w", err)
	}

	srv, err := NewServerApp(ctx, c)
	if err != nil {
		return fmt.Errorf("can't initialize app, sorry. Err: %w", err)
	}

	err = srv.Run(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
