package middlewarectx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

type MockUserGetter struct {
	mock.Mock
}

func (m *MockUserGetter) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestRequireAdmin(t *testing.T) {
	maker := newMaker(t)

	tests := []struct {
		name           string
		token          string
		throughGate    bool
		setupMocks     func(*MockUserGetter)
		expectedStatus int
	}{
		{
			name:        "admin in store",
			token:       issue(t, maker, models.RoleAdmin),
			throughGate: true,
			setupMocks: func(m *MockUserGetter) {
				m.On("GetUserByID", mock.Anything, "user-1").Return(&models.User{UUID: "user-1", Role: models.RoleAdmin}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "stale admin claims, demoted in store",
			token:       issue(t, maker, models.RoleAdmin),
			throughGate: true,
			setupMocks: func(m *MockUserGetter) {
				m.On("GetUserByID", mock.Anything, "user-1").Return(&models.User{UUID: "user-1", Role: models.RoleUser}, nil).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:        "verifies token itself on public path",
			token:       issue(t, maker, models.RoleUser),
			throughGate: false,
			setupMocks: func(m *MockUserGetter) {
				m.On("GetUserByID", mock.Anything, "user-1").Return(&models.User{UUID: "user-1", Role: models.RoleAdmin}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no token on public path",
			setupMocks:     func(*MockUserGetter) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bad token on public path",
			token:          "garbage",
			setupMocks:     func(*MockUserGetter) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:        "deleted account",
			token:       issue(t, maker, models.RoleAdmin),
			throughGate: true,
			setupMocks: func(m *MockUserGetter) {
				m.On("GetUserByID", mock.Anything, "user-1").Return(nil, errs.ErrNotFound).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:        "store failure",
			token:       issue(t, maker, models.RoleAdmin),
			throughGate: true,
			setupMocks: func(m *MockUserGetter) {
				m.On("GetUserByID", mock.Anything, "user-1").Return(nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserGetter)
			tt.setupMocks(users)

			var h http.Handler = RequireAdmin(newNoopLogger(), maker, users)(echoHandler())
			path := "/api/waiting-list"
			if tt.throughGate {
				h = Gate(newNoopLogger(), maker, staticMode(false))(h)
				path = "/api/users"
			}

			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := serve(h, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, models.RoleAdmin, rec.Header().Get("X-Role"))
			}
			users.AssertExpectations(t)
		})
	}
}
