package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/depgraph/internal/app"
	"github.com/specialistvlad/depgraph/internal/cli"
	"github.com/specialistvlad/depgraph/internal/config"
	"github.com/specialistvlad/depgraph/internal/ctxlog"
)

// main is the entrypoint for the depmake application.
func main() {
	// Use a minimal logger until the full one is configured.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file.", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	flags, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	cfg, err := app.Resolve(ctx, *flags, config.Environ())
	if err != nil {
		return &cli.ExitError{Code: 2, Message: err.Error()}
	}

	_, err = app.NewApp(outW, logW, cfg, nil).Run(ctx)
	return err
}
