package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"ai-chat-relay/internal/provider"
	providerfactory "ai-chat-relay/internal/provider/factory"
	"ai-chat-relay/internal/router"
	"ai-chat-relay/internal/server"
)

const serveUsage = `Usage:
  ai-chat-relay serve [--config <path>] [--env-file <path>] [--port <port>]

Flags:
  --config   string   Path to YAML configuration file (defaults apply when omitted)
  --env-file string   Path to a dotenv file with provider API keys
  --port     int      Override server port from configuration`

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, serveUsage)
	}

	var settings settingsFlags
	var overridePort int
	settings.register(fs)
	fs.IntVar(&overridePort, "port", 0, "override server port")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse serve flags: %w", err)
	}

	cfg, creds, err := settings.load()
	if err != nil {
		return err
	}

	if overridePort != 0 {
		if overridePort <= 0 || overridePort > 65535 {
			return fmt.Errorf("port override %d must be a valid TCP port", overridePort)
		}
		cfg.Server.Port = overridePort
	}

	if err := configureLogging(cfg); err != nil {
		return err
	}

	available := creds.Available()
	if len(available) == 0 {
		slog.Warn("no provider API keys configured; chat requests will fail until one is set")
	} else {
		slog.Info("providers configured", "providers", available)
	}

	registry := provider.NewRegistry()
	if err := providerfactory.RegisterConfiguredProviders(cfg, creds, registry); err != nil {
		return err
	}

	rt, err := router.New(registry, creds)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, rt)
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}
