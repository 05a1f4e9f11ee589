package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"

	"github.com/dmitrijs2005/userdesk/internal/client/cli"
	"github.com/dmitrijs2005/userdesk/internal/client/client"
	"github.com/dmitrijs2005/userdesk/internal/client/config"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	log := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "userdesk failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	db, err := client.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return oops.In("main").With("path", cfg.DatabasePath).Wrapf(err, "initialize database")
	}
	defer db.Close()

	app, err := cli.NewApp(cfg, log, db)
	if err != nil {
		return oops.In("main").With("base_url", cfg.BaseURL).Wrapf(err, "create client")
	}

	app.Run(ctx)
	return nil
}
