// Команда sender доставляет письма из очереди email.outgoing по SMTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/saaskit/internal/app/sender"
	"github.com/magabrotheeeer/saaskit/internal/config"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout).With(slog.String("service", "sender"))

	if err := run(cfg, logger); err != nil {
		logger.Error("sender exited", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("sender stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := sender.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("sender started",
		slog.String("env", cfg.Env),
		slog.String("smtp_host", cfg.SMTP.Host),
	)
	return app.Run(ctx)
}
