package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"marketvue_backend/internal/client/apiclient"
	"marketvue_backend/internal/client/cli"
	"marketvue_backend/internal/client/cliconfig"
	"marketvue_backend/internal/client/routeguard"
	"marketvue_backend/internal/client/session"
	"marketvue_backend/internal/logger"
	"marketvue_backend/pkg/apperrors"
)

func main() {
	configPath := flag.String("config", "", "path to marketctl.yaml")
	flag.Usage = func() { cli.Usage(os.Stderr) }
	flag.Parse()

	cfg, err := cliconfig.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.InitWithWriter(cfg.Env, os.Stderr)

	sessions := session.NewFileStore(cfg.SessionDir)
	app := &cli.App{
		Client:   apiclient.New(cfg.ServerURL, sessions, apiclient.WithHTTPClient(&http.Client{Timeout: cfg.Timeout})),
		Sessions: sessions,
		Guard:    routeguard.New(),
		Out:      os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, flag.Args()); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			cli.Usage(os.Stderr)
			os.Exit(2)
		}
		if appErr, ok := apperrors.AsAppError(err); ok {
			fmt.Fprintf(os.Stderr, "error: %s (%s)\n", appErr.Message, appErr.Code)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
