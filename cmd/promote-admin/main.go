// Команда promote-admin назначает существующей учётной записи роль admin.
//
//	CONFIG_PATH=config/config.yaml promote-admin -email owner@example.com
//
// Без флага берётся admin_email из конфига.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/magabrotheeeer/saaskit/internal/config"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	usersservice "github.com/magabrotheeeer/saaskit/internal/services/users"
	"github.com/magabrotheeeer/saaskit/internal/storage/repository"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)

	email := flag.String("email", cfg.AdminEmail, "email of the account to promote")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.New(ctx, cfg.Storage.ConnectionString)
	if err != nil {
		logger.Error("failed to connect to database", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	user, err := usersservice.NewUserService(db).PromoteToAdmin(ctx, *email)
	if err != nil {
		logger.Error("failed to promote user", sl.Err(err), slog.String("email", *email))
		os.Exit(1)
	}

	logger.Info("user promoted to admin", slog.String("user_id", user.UUID), slog.String("email", user.Email))
}
