// Package paymentprovider реализует адаптер к Stripe: проверку подписи вебхуков,
// чтение подписок, создание клиентов и сессий оплаты.
//
// Наружу отдаются только доменные типы из models, SDK провайдера остаётся внутри пакета.
package paymentprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/saaskit/internal/config"
	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// Ключи metadata, которые сервис кладёт в сессию оплаты и подписку.
const (
	MetadataUserID = "userId"
	MetadataPlan   = "plan"
)

// Client обращается к API Stripe. Исходящие запросы ограничены по частоте.
type Client struct {
	api           *client.API
	webhookSecret string
	limiter       *rate.Limiter
}

// NewClient создаёт клиента. Пустой webhook secret возвращает errs.ErrConfiguration.
func NewClient(cfg config.Stripe, backends *stripe.Backends) (*Client, error) {
	const op = "paymentprovider.NewClient"
	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%s: webhook secret is empty: %w", op, errs.ErrConfiguration)
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 20
	}
	return &Client{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		limiter:       rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}, nil
}

// GetSubscription возвращает текущее состояние подписки у провайдера.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*models.SubscriptionState, error) {
	const op = "paymentprovider.GetSubscription"
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, errs.ErrUpstreamDelivery, err)
	}
	return subscriptionState(sub), nil
}

// CreateCustomer создаёт клиента провайдера для пользователя и возвращает его идентификатор.
func (c *Client) CreateCustomer(ctx context.Context, userID, email, name string) (string, error) {
	const op = "paymentprovider.CreateCustomer"
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata(MetadataUserID, userID)
	cus, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, errs.ErrUpstreamDelivery, err)
	}
	return cus.ID, nil
}

// CreateCheckoutSession создаёт сессию оплаты подписки и возвращает URL страницы оплаты.
//
// userId и plan пишутся и в metadata сессии, и в metadata будущей подписки.
func (c *Client) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (string, error) {
	const op = "paymentprovider.CreateCheckoutSession"
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	metadata := map[string]string{
		MetadataUserID: req.UserID,
		MetadataPlan:   req.Plan,
	}
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(req.CustomerID),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		Metadata: metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = ctx
	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, errs.ErrUpstreamDelivery, err)
	}
	return sess.URL, nil
}

func subscriptionState(sub *stripe.Subscription) *models.SubscriptionState {
	st := &models.SubscriptionState{
		ID:     sub.ID,
		Status: string(sub.Status),
	}
	if sub.Metadata != nil {
		st.UserID = sub.Metadata[MetadataUserID]
		st.Plan = sub.Metadata[MetadataPlan]
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		st.CurrentPeriodEnd = &end
	}
	return st
}
