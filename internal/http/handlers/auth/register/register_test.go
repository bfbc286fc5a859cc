package register

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	authservice "github.com/magabrotheeeer/saaskit/internal/services/auth"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (*authservice.RegisterResult, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authservice.RegisterResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegisterHandler(t *testing.T) {
	validBody := `{"name":"Alice","email":"alice@example.com","password":"password123"}`

	tests := []struct {
		name           string
		body           string
		setupMocks     func(*MockAuthService)
		expectedStatus int
		check          func(t *testing.T, resp Response)
	}{
		{
			name: "success",
			body: validBody,
			setupMocks: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "Alice", "alice@example.com", "password123").
					Return(&authservice.RegisterResult{UserID: "uid-1"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, resp Response) {
				assert.Equal(t, "uid-1", resp.UserID)
				assert.Empty(t, resp.EmailError)
			},
		},
		{
			name: "email dispatch failed",
			body: validBody,
			setupMocks: func(m *MockAuthService) {
				m.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(&authservice.RegisterResult{UserID: "uid-2", EmailErr: errs.ErrUpstreamDelivery}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, resp Response) {
				assert.Equal(t, "uid-2", resp.UserID)
				assert.NotEmpty(t, resp.EmailError)
			},
		},
		{
			name: "duplicate email",
			body: validBody,
			setupMocks: func(m *MockAuthService) {
				m.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errs.ErrConflict).Once()
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "short password",
			body:           `{"name":"Alice","email":"alice@example.com","password":"short"}`,
			setupMocks:     func(*MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "password longer than bcrypt accepts",
			body:           `{"name":"Alice","email":"alice@example.com","password":"` + strings.Repeat("a", 73) + `"}`,
			setupMocks:     func(*MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid email",
			body:           `{"name":"Alice","email":"alice","password":"password123"}`,
			setupMocks:     func(*MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			body:           `{"name":`,
			setupMocks:     func(*MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			tt.setupMocks(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.check != nil {
				var resp Response
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				tt.check(t, resp)
			}
			svc.AssertExpectations(t)
		})
	}
}
