package saaskit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/saaskit/internal/cache"
	"github.com/magabrotheeeer/saaskit/internal/config"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/health"
	"github.com/magabrotheeeer/saaskit/internal/lib/jwt"
	"github.com/magabrotheeeer/saaskit/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/mail"
	"github.com/magabrotheeeer/saaskit/internal/migrations"
	"github.com/magabrotheeeer/saaskit/internal/obs"
	"github.com/magabrotheeeer/saaskit/internal/paymentprovider"
	"github.com/magabrotheeeer/saaskit/internal/ratelimit"
	authservice "github.com/magabrotheeeer/saaskit/internal/services/auth"
	billingservice "github.com/magabrotheeeer/saaskit/internal/services/billing"
	settingsservice "github.com/magabrotheeeer/saaskit/internal/services/settings"
	usersservice "github.com/magabrotheeeer/saaskit/internal/services/users"
	waitinglistservice "github.com/magabrotheeeer/saaskit/internal/services/waitinglist"
	"github.com/magabrotheeeer/saaskit/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключает хранилища и брокер, применяет миграции и собирает маршруты.
// Отсутствие обязательных секретов возвращает errs.ErrConfiguration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.saaskit.New"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokens, err := jwt.NewMaker(cfg.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	provider, err := paymentprovider.NewClient(cfg.Stripe, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := repository.New(ctx, cfg.Storage.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	version, err := migrations.Run(db.DB, cfg.MigrationsPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("database schema is up to date", slog.Uint64("version", uint64(version)))

	cacheRedis, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mailer := mail.NewMailer(rabbitmq.NewPublisher(ch, rabbitmq.EmailRoutingKey), cfg.AppURL)
	settings := settingsservice.NewService(logger, db, cacheRedis, cfg.SettingsCacheTTL)

	var counter ratelimit.Counter = ratelimit.NewMemoryCounter()
	if cfg.RateLimit.Backend == "redis" {
		counter = ratelimit.NewRedisCounter(cacheRedis.Client(), cacheRedis.Prefix()+"rate_limit:")
	}

	obs.Init()
	checks := map[string]health.Pinger{
		"postgres": db,
		"redis":    cacheRedis,
		"rabbitmq": health.PingFunc(rabbitmq.ConnectionCheck(conn)),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Log:          logger,
		Tokens:       tokens,
		Users:        db,
		Auth:         authservice.NewAuthService(logger, db, tokens, mailer),
		UserAdmin:    usersservice.NewUserService(db),
		Settings:     settings,
		WaitingList:  waitinglistservice.NewService(db, settings),
		Checkout:     billingservice.NewCheckoutService(db, provider, cfg.AppURL),
		Reconciler:   billingservice.NewReconciler(logger, db, provider),
		Provider:     provider,
		Limiter:      ratelimit.NewLimiter(counter, cfg.RateLimit.Limit, cfg.RateLimit.Window),
		HealthChecks: checks,
		SecureCookie: cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
