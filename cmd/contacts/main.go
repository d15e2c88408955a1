package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/contacts-client/internal/app"
	"github.com/Adda-Baaj/contacts-client/internal/config"
	"github.com/Adda-Baaj/contacts-client/internal/logger"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "contacts failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	in, err := parseArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWith(in.viper)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("contacts starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize client", "error", err)
		return err
	}
	defer client.Close()

	return execute(ctx, client, in, os.Stdout)
}
