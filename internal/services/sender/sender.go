// Package services реализует воркер доставки писем: сообщения из очереди
// отправляются по SMTP.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/lib/smtp"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// SenderService доставляет письма через SMTP транспорт.
type SenderService struct {
	dialer smtp.Dialer
	log    *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, dialer smtp.Dialer) *SenderService {
	return &SenderService{
		dialer: dialer,
		log:    log,
	}
}

// HandleEmail обрабатывает одно сообщение очереди email.outgoing.
func (s *SenderService) HandleEmail(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleEmail"
	log := s.log.With(slog.String("op", op))

	var message models.EmailMessage
	if err := json.Unmarshal(body, &message); err != nil {
		log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, errs.ErrValidation, err)
	}
	if message.To == "" {
		return fmt.Errorf("%s: empty recipient: %w", op, errs.ErrValidation)
	}

	if err := s.sendEmail(ctx, []string{message.To}, message.Subject, message.HTML); err != nil {
		return fmt.Errorf("%s: %w: %w", op, errs.ErrUpstreamDelivery, err)
	}
	return nil
}

// composeMessage собирает RFC 5322 сообщение с HTML-телом.
func composeMessage(from string, to []string, subject, html string) []byte {
	return []byte(strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		html,
	}, "\r\n"))
}

func (s *SenderService) sendEmail(ctx context.Context, to []string, subject, html string) error {
	msg := composeMessage(s.dialer.HeaderFrom(), to, subject, html)

	client, err := s.dialer.Dial(ctx)
	if err != nil {
		s.log.Error("failed to open smtp session", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	envelope := s.dialer.EnvelopeFrom()
	if err := client.Mail(envelope); err != nil {
		s.log.Error("MAIL FROM rejected", slog.String("from", envelope), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("RCPT TO rejected", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("DATA rejected", sl.Err(err))
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		_ = wc.Close()
		s.log.Error("failed to write message", sl.Err(err))
		return err
	}
	if err := wc.Close(); err != nil {
		s.log.Error("message not accepted", sl.Err(err))
		return err
	}

	if err := client.Quit(); err != nil {
		s.log.Warn("smtp QUIT failed", sl.Err(err))
	}
	s.log.Info("email sent", slog.Any("to", to))
	return nil
}
