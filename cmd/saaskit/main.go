// Package main SaaS Kit API
//
// @title           SaaS Kit API
// @version         1.0
// @description     Аутентификация, шлюз доступа, подписки и лист ожидания.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/saaskit/docs"
	"github.com/magabrotheeeer/saaskit/internal/app/saaskit"
	"github.com/magabrotheeeer/saaskit/internal/config"
	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)

	logger.Info("starting saaskit", slog.String("env", cfg.Env))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := saaskit.New(ctx, cfg, logger)
	if err != nil {
		if errors.Is(err, errs.ErrConfiguration) {
			logger.Error("invalid configuration", sl.Err(err))
		} else {
			logger.Error("failed to initialize app", sl.Err(err))
		}
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("saaskit stopped gracefully")
}
