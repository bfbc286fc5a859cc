package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/models"
	services "github.com/magabrotheeeer/saaskit/internal/services/billing"
)

type CheckoutRepoMock struct {
	mock.Mock
}

func (m *CheckoutRepoMock) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *CheckoutRepoMock) SetStripeCustomerID(ctx context.Context, userUID, customerID string) error {
	return m.Called(ctx, userUID, customerID).Error(0)
}

type CheckoutProviderMock struct {
	mock.Mock
}

func (m *CheckoutProviderMock) CreateCustomer(ctx context.Context, userID, email, name string) (string, error) {
	args := m.Called(ctx, userID, email, name)
	return args.String(0), args.Error(1)
}

func (m *CheckoutProviderMock) CreateCheckoutSession(ctx context.Context, req models.CheckoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestCheckoutService_CreateCheckout(t *testing.T) {
	t.Run("creates customer on first checkout", func(t *testing.T) {
		repo := new(CheckoutRepoMock)
		provider := new(CheckoutProviderMock)
		repo.On("GetUserByID", mock.Anything, "u-1").
			Return(&models.User{UUID: "u-1", Email: "a@example.com", Name: "Alice"}, nil).Once()
		provider.On("CreateCustomer", mock.Anything, "u-1", "a@example.com", "Alice").Return("cus_1", nil).Once()
		repo.On("SetStripeCustomerID", mock.Anything, "u-1", "cus_1").Return(nil).Once()
		provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req models.CheckoutRequest) bool {
			return req.UserID == "u-1" &&
				req.CustomerID == "cus_1" &&
				req.PriceID == "price_1" &&
				req.Plan == "pro" &&
				req.SuccessURL == "https://app.example/dashboard?checkout=success" &&
				req.CancelURL == "https://app.example/pricing?checkout=canceled"
		})).Return("https://checkout.example/cs_1", nil).Once()

		svc := services.NewCheckoutService(repo, provider, "https://app.example/")
		url, err := svc.CreateCheckout(context.Background(), "u-1", "price_1", "pro")
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example/cs_1", url)
		repo.AssertExpectations(t)
		provider.AssertExpectations(t)
	})

	t.Run("reuses existing customer", func(t *testing.T) {
		repo := new(CheckoutRepoMock)
		provider := new(CheckoutProviderMock)
		repo.On("GetUserByID", mock.Anything, "u-1").
			Return(&models.User{UUID: "u-1", StripeCustomerID: "cus_9"}, nil).Once()
		provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req models.CheckoutRequest) bool {
			return req.CustomerID == "cus_9"
		})).Return("https://checkout.example/cs_2", nil).Once()

		svc := services.NewCheckoutService(repo, provider, "https://app.example")
		_, err := svc.CreateCheckout(context.Background(), "u-1", "price_1", "pro")
		require.NoError(t, err)
		provider.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(CheckoutRepoMock)
		repo.On("GetUserByID", mock.Anything, "u-x").Return(nil, errs.ErrNotFound).Once()

		svc := services.NewCheckoutService(repo, new(CheckoutProviderMock), "https://app.example")
		_, err := svc.CreateCheckout(context.Background(), "u-x", "price_1", "pro")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}
