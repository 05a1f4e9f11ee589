package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/dmitrijs2005/userdesk/internal/devserver"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

type options struct {
	addr             string
	secret           string
	tokenTTL         time.Duration
	perPage          int
	password         string
	gracefulShutdown time.Duration
	logLevel         string
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "devserver",
		Short:        "reqres-compatible user service for local development",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&opts.secret, "secret", "", "token signing secret (required)")
	cmd.Flags().DurationVar(&opts.tokenTTL, "token-ttl", time.Hour, "token lifetime")
	cmd.Flags().IntVar(&opts.perPage, "per-page", devserver.DefaultPerPage, "default page size")
	cmd.Flags().StringVar(&opts.password, "password", devserver.DefaultPassword, "password of every seeded account")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().DurationVar(&opts.gracefulShutdown, "graceful-shutdown", 5*time.Second, "graceful shutdown timeout")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	if opts.secret == "" {
		return oops.In("main").Errorf("--secret is required")
	}

	log := logging.NewJSONLogger(os.Stdout, opts.logLevel).Slog()
	ctx = slogctx.NewCtx(ctx, log)

	users, err := devserver.NewUserStore(opts.password, bcrypt.DefaultCost)
	if err != nil {
		return oops.In("main").Wrapf(err, "seed users")
	}
	tokens := devserver.NewTokens([]byte(opts.secret), opts.tokenTTL)

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           devserver.NewServer(log, users, tokens, opts.perPage).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slogctx.Info(ctx, "listening", "addr", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return oops.In("main").With("addr", opts.addr).Wrapf(err, "serve")
	case <-ctx.Done():
	}

	slogctx.Info(ctx, "shutting down", "timeout", opts.gracefulShutdown)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.gracefulShutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.In("main").Wrapf(err, "shutdown")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Error(ctx, "devserver failed", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
