package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/migrations"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и накатывает миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	_, err = migrations.Run(storage.DB, filepath.Join(root, "migrations"))
	require.NoError(t, err)
	return storage
}

func createTestUser(t *testing.T, s *Storage, email, role string) string {
	t.Helper()
	id, err := s.CreateUser(context.Background(), models.User{
		Name:         "Test",
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
	})
	require.NoError(t, err)
	return id
}

func TestIntegration_UserLifecycle(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	id := createTestUser(t, s, "alice@example.com", models.RoleUser)

	_, err := s.CreateUser(ctx, models.User{Name: "Dup", Email: "ALICE@example.com", PasswordHash: "x", Role: models.RoleUser})
	assert.ErrorIs(t, err, errs.ErrConflict)

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, s.SetVerificationToken(ctx, id, "verify-token", expiry))

	u, err := s.GetUserByVerificationToken(ctx, "verify-token")
	require.NoError(t, err)
	assert.Equal(t, id, u.UUID)

	require.NoError(t, s.MarkEmailVerified(ctx, id))
	u, err = s.GetUserByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.True(t, u.IsEmailVerified)
	assert.Empty(t, u.VerificationToken)

	_, err = s.GetUserByVerificationToken(ctx, "verify-token")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, s.SetResetPasswordToken(ctx, id, "reset-token", time.Now().Add(-time.Minute)))
	_, err = s.GetUserByResetToken(ctx, "reset-token")
	assert.ErrorIs(t, err, errs.ErrNotFound, "expired reset token must not match")
}

func TestIntegration_ApplySubscriptionChange(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	userID := createTestUser(t, s, "user@example.com", models.RoleUser)
	adminID := createTestUser(t, s, "admin@example.com", models.RoleUser)
	_, err := s.PromoteToAdmin(ctx, "admin@example.com")
	require.NoError(t, err)

	t0 := time.Now().UTC().Truncate(time.Second)
	end1 := t0.AddDate(0, 1, 0)
	end2 := t0.AddDate(0, 2, 0)

	newer := models.SubscriptionChange{SubscriptionID: "sub_1", Status: "active", Plan: "pro", PeriodEnd: &end2, EventAt: t0.Add(time.Minute)}
	older := models.SubscriptionChange{Status: "canceled", PeriodEnd: &end1, EventAt: t0}

	applied, err := s.ApplySubscriptionChange(ctx, userID, newer)
	require.NoError(t, err)
	assert.True(t, applied)

	// повтор того же события сходится к тому же состоянию
	applied, err = s.ApplySubscriptionChange(ctx, userID, newer)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = s.ApplySubscriptionChange(ctx, userID, older)
	require.NoError(t, err)
	assert.False(t, applied, "older event must not overwrite newer state")

	u, err := s.GetUserBySubscriptionID(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, userID, u.UUID)
	assert.Equal(t, "active", u.SubscriptionStatus)
	require.NotNil(t, u.SubscriptionCurrentPeriod)
	assert.True(t, end2.Equal(*u.SubscriptionCurrentPeriod))

	applied, err = s.ApplySubscriptionChange(ctx, adminID, newer)
	require.NoError(t, err)
	assert.False(t, applied, "admin rows are never touched by billing")

	admin, err := s.GetUserByID(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, admin.SubscriptionStatus)
	assert.Equal(t, models.AdminPlan, admin.SubscriptionPlan)
}

func TestIntegration_UpdateUserRoleChanges(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	id := createTestUser(t, s, "bob@example.com", models.RoleUser)

	u, err := s.UpdateUser(ctx, id, models.UserUpdate{Name: "Bob", Email: "bob@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, models.AdminPlan, u.SubscriptionPlan)

	u, err = s.UpdateUser(ctx, id, models.UserUpdate{Name: "Bob", Email: "bob@example.com", Role: models.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.Empty(t, u.SubscriptionPlan)
	assert.Empty(t, u.SubscriptionStatus)
	assert.Nil(t, u.SubscriptionCurrentPeriod)

	users, total, err := s.ListUsers(ctx, models.UserFilter{Search: "bob", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, users, 1)
}

func TestIntegration_SettingsAndWaitingList(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	st, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.False(t, st.IsWaitingListMode)

	st, err = s.UpdateSettings(ctx, true)
	require.NoError(t, err)
	assert.True(t, st.IsWaitingListMode)

	_, err = s.AddWaitingListEntry(ctx, "Carol", "carol@example.com")
	require.NoError(t, err)
	_, err = s.AddWaitingListEntry(ctx, "Carol", "Carol@example.com")
	assert.ErrorIs(t, err, errs.ErrConflict)

	entries, total, err := s.ListWaitingList(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, entries, 1)
}
