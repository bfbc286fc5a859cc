package paymentprovider

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// ParseWebhook проверяет подпись вебхука и переводит событие в models.BillingEvent.
//
// Неверная или просроченная подпись возвращает errs.ErrInvalidSignature,
// подписанное, но нечитаемое тело errs.ErrValidation.
// Для необрабатываемых типов заполняются только ID, Type и CreatedAt.
func (c *Client) ParseWebhook(payload []byte, signature string) (*models.BillingEvent, error) {
	const op = "paymentprovider.ParseWebhook"
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%s: %w: %w", op, errs.ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, errs.ErrValidation, err)
	}

	ev := &models.BillingEvent{
		ID:        event.ID,
		Type:      string(event.Type),
		CreatedAt: time.Unix(event.Created, 0).UTC(),
	}
	if event.Data == nil {
		return ev, nil
	}

	switch ev.Type {
	case models.EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, errs.ErrValidation, err)
		}
		co := &models.CheckoutCompleted{}
		if sess.Metadata != nil {
			co.UserID = sess.Metadata[MetadataUserID]
			co.Plan = sess.Metadata[MetadataPlan]
		}
		if sess.Subscription != nil {
			co.SubscriptionID = sess.Subscription.ID
		}
		if sess.Customer != nil {
			co.CustomerID = sess.Customer.ID
		}
		ev.Checkout = co

	case models.EventSubscriptionUpdated, models.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, errs.ErrValidation, err)
		}
		ev.Subscription = subscriptionState(&sub)

	case models.EventInvoicePaymentSucceeded, models.EventInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, errs.ErrValidation, err)
		}
		ie := &models.InvoiceEvent{}
		if inv.Subscription != nil {
			ie.SubscriptionID = inv.Subscription.ID
		}
		ev.Invoice = ie
	}
	return ev, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
