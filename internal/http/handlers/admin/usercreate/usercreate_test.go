package usercreate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, name, email, rawPassword, role string) (*models.User, error) {
	args := m.Called(ctx, name, email, rawPassword, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestUserCreateHandler(t *testing.T) {
	valid := `{"name":"Bob","email":"bob@example.com","password":"password123","role":"admin"}`

	tests := []struct {
		name           string
		body           string
		setupMocks     func(*MockUserService)
		expectedStatus int
	}{
		{
			name: "success",
			body: valid,
			setupMocks: func(m *MockUserService) {
				m.On("Create", mock.Anything, "Bob", "bob@example.com", "password123", "admin").
					Return(&models.User{UUID: "u1", Name: "Bob", Role: models.RoleAdmin, IsEmailVerified: true}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: valid,
			setupMocks: func(m *MockUserService) {
				m.On("Create", mock.Anything, "Bob", "bob@example.com", "password123", "admin").
					Return(nil, fmt.Errorf("op: %w", errs.ErrConflict)).Once()
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "unknown role",
			body:           `{"name":"Bob","email":"bob@example.com","password":"password123","role":"root"}`,
			setupMocks:     func(*MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "password longer than bcrypt accepts",
			body:           `{"name":"Bob","email":"bob@example.com","password":"` + strings.Repeat("c", 73) + `","role":"user"}`,
			setupMocks:     func(*MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "broken json",
			body:           `{`,
			setupMocks:     func(*MockUserService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			tt.setupMocks(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(tt.body))
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
