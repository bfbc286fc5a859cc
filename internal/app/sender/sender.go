// Package sender собирает воркер доставки писем из очереди email.outgoing.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/saaskit/internal/config"
	"github.com/magabrotheeeer/saaskit/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/lib/smtp"
	"github.com/magabrotheeeer/saaskit/internal/obs"
	senderservice "github.com/magabrotheeeer/saaskit/internal/services/sender"
)

const drainTimeout = 30 * time.Second

// App воркер: потребитель очереди писем и необязательный listener метрик.
type App struct {
	log     *slog.Logger
	conn    *amqp.Connection
	ch      *amqp.Channel
	handler rabbitmq.Handler
	metrics *http.Server
}

// New подключается к брокеру и готовит SMTP-транспорт. Соединение с SMTP
// открывается на каждое письмо, поэтому его недоступность при старте не ошибка.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	svc := senderservice.NewSenderService(logger, smtp.NewTransport(cfg.SMTP, logger))
	app := &App{
		log:     logger.With(slog.String("component", "sender")),
		conn:    conn,
		ch:      ch,
		handler: svc.HandleEmail,
	}

	if addr := cfg.RabbitMQ.MetricsAddress; addr != "" {
		obs.Init()
		r := chi.NewRouter()
		r.Handle("/metrics", obs.Handler())
		app.metrics = &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	}
	return app, nil
}

// Run потребляет очередь до отмены ctx, затем ждёт начатые отправки и закрывает соединения.
func (a *App) Run(ctx context.Context) error {
	stopped, err := rabbitmq.ConsumerMessage(ctx, a.log, a.ch, rabbitmq.EmailQueue, a.handler)
	if err != nil {
		a.close()
		return err
	}
	a.log.Info("consuming", slog.String("queue", rabbitmq.EmailQueue))

	if a.metrics != nil {
		go func() {
			if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("metrics listener failed", sl.Err(err))
			}
		}()
	}

	<-ctx.Done()
	a.log.Info("shutting down, waiting for in-flight emails")

	select {
	case <-stopped:
	case <-time.After(drainTimeout):
		a.log.Warn("in-flight emails did not finish in time", slog.Duration("timeout", drainTimeout))
	}
	a.close()
	return nil
}

func (a *App) close() {
	if a.metrics != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.metrics.Shutdown(shutdownCtx)
	}
	if err := a.ch.Close(); err != nil {
		a.log.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.log.Error("failed to close connection", sl.Err(err))
	}
}
