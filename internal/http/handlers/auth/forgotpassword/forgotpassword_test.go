package forgotpassword

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/http/response"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestHandler_AlwaysOK(t *testing.T) {
	for name, svcErr := range map[string]error{
		"delivered":       nil,
		"delivery failed": errs.ErrUpstreamDelivery,
	} {
		t.Run(name, func(t *testing.T) {
			svc := new(MockAuthService)
			svc.On("ForgotPassword", mock.Anything, "alice@example.com").Return(svcErr).Once()

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", bytes.NewBufferString(`{"email":"alice@example.com"}`))
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			var body response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, Message, body.Message)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_InvalidEmail(t *testing.T) {
	svc := new(MockAuthService)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", bytes.NewBufferString(`{"email":"nope"}`))
	New(newNoopLogger(), svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ForgotPassword", mock.Anything, mock.Anything)
}
