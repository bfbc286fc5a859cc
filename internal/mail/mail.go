// Package mail формирует письма подтверждения email и сброса пароля
// и ставит их в очередь для воркера sender.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// Publisher публикует сообщение в брокер.
type Publisher interface {
	Publish(ctx context.Context, message any) error
}

var (
	verificationTmpl = template.Must(template.New("verify").Parse(
		`<p>Hello {{.Name}},</p>
<p>Please confirm your email address by following the link below. The link is valid for 24 hours.</p>
<p><a href="{{.Link}}">Verify email</a></p>
<p>If you did not create an account, ignore this message.</p>`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<p>Hello {{.Name}},</p>
<p>We received a request to reset your password. The link is valid for 1 hour.</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>If you did not request a reset, ignore this message.</p>`))
)

// Mailer собирает письма со ссылками на appURL.
type Mailer struct {
	publisher Publisher
	appURL    string
}

// NewMailer создаёт Mailer.
func NewMailer(publisher Publisher, appURL string) *Mailer {
	return &Mailer{publisher: publisher, appURL: strings.TrimRight(appURL, "/")}
}

// SendVerificationEmail ставит в очередь письмо со ссылкой /verify-email?token=.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	const op = "mail.SendVerificationEmail"
	if err := m.send(ctx, verificationTmpl, to, name, "Verify your email address", "/verify-email", token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SendPasswordResetEmail ставит в очередь письмо со ссылкой /reset-password?token=.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	const op = "mail.SendPasswordResetEmail"
	if err := m.send(ctx, resetTmpl, to, name, "Reset your password", "/reset-password", token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Mailer) send(ctx context.Context, tmpl *template.Template, to, name, subject, path, token string) error {
	link := m.appURL + path + "?token=" + url.QueryEscape(token)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Name, Link string }{Name: name, Link: link}); err != nil {
		return err
	}

	msg := models.EmailMessage{To: to, Subject: subject, HTML: buf.String()}
	if err := m.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrUpstreamDelivery, err)
	}
	return nil
}
