package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/saaskit/internal/models"
)

// CheckoutRepository доступ к учётным записям для оформления подписки.
type CheckoutRepository interface {
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, userUID, customerID string) error
}

// CheckoutProvider создаёт клиентов и сессии оплаты у провайдера.
type CheckoutProvider interface {
	CreateCustomer(ctx context.Context, userID, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (string, error)
}

// CheckoutService оформляет подписку через страницу оплаты провайдера.
type CheckoutService struct {
	users    CheckoutRepository
	provider CheckoutProvider
	appURL   string
}

// NewCheckoutService создаёт CheckoutService. Адреса возврата строятся от appURL.
func NewCheckoutService(users CheckoutRepository, provider CheckoutProvider, appURL string) *CheckoutService {
	return &CheckoutService{
		users:    users,
		provider: provider,
		appURL:   strings.TrimRight(appURL, "/"),
	}
}

// CreateCheckout возвращает URL страницы оплаты. Клиент провайдера создаётся при первом вызове.
func (s *CheckoutService) CreateCheckout(ctx context.Context, userID, priceID, plan string) (string, error) {
	const op = "services.billing.CreateCheckout"

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		customerID, err = s.provider.CreateCustomer(ctx, user.UUID, user.Email, user.Name)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if err := s.users.SetStripeCustomerID(ctx, user.UUID, customerID); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	url, err := s.provider.CreateCheckoutSession(ctx, models.CheckoutRequest{
		UserID:     user.UUID,
		Email:      user.Email,
		CustomerID: customerID,
		PriceID:    priceID,
		Plan:       plan,
		SuccessURL: s.appURL + "/dashboard?checkout=success",
		CancelURL:  s.appURL + "/pricing?checkout=canceled",
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}
