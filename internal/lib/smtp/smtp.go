// Package smtp открывает SMTP-сессии для воркера sender.
package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/saaskit/internal/config"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
)

const dialTimeout = 10 * time.Second

// ErrNoStartTLS сервер не объявил STARTTLS, а конфигурация его требует.
var ErrNoStartTLS = errors.New("smtp server does not support STARTTLS")

// Client часть *smtp.Client, которой пользуется отправитель.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer открывает готовую к отправке сессию и знает адреса отправителя.
type Dialer interface {
	Dial(ctx context.Context) (Client, error)
	EnvelopeFrom() string
	HeaderFrom() string
}

// Transport Dialer поверх net/smtp.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

// NewTransport создает Transport по секции smtp конфигурации.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log.With(slog.String("component", "smtp"))}
}

// Dial подключается к серверу, поднимает TLS и проходит аутентификацию.
// При любой ошибке соединение закрывается.
func (t *Transport) Dial(ctx context.Context) (Client, error) {
	const op = "lib.smtp.Dial"

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(t.cfg.Host, t.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	c, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: greeting: %w", op, err)
	}

	if err := t.handshake(c); err != nil {
		if closeErr := c.Close(); closeErr != nil {
			t.log.Warn("failed to close smtp connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (t *Transport) handshake(c *smtp.Client) error {
	if t.cfg.StartTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return ErrNoStartTLS
		}
		if err := c.StartTLS(&tls.Config{ServerName: t.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if t.cfg.User == "" {
		return nil
	}
	if err := c.Auth(smtp.PlainAuth("", t.cfg.User, t.cfg.Pass, t.cfg.Host)); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}

// EnvelopeFrom адрес для MAIL FROM: логин SMTP, а без него smtp.from.
func (t *Transport) EnvelopeFrom() string {
	if t.cfg.User != "" {
		return t.cfg.User
	}
	return t.cfg.From
}

// HeaderFrom адрес для заголовка From: smtp.from или логин SMTP.
func (t *Transport) HeaderFrom() string {
	if t.cfg.From != "" {
		return t.cfg.From
	}
	return t.cfg.User
}
