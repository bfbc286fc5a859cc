package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

const userColumns = `uid, name, email, password_hash, role, is_email_verified,
	verification_token, verification_token_expiry, reset_password_token, reset_password_token_expiry,
	last_login, avatar, stripe_customer_id, subscription_id, subscription_status, subscription_plan,
	subscription_current_period_end, subscription_event_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                                                models.User
		verificationToken, resetToken, customerID, subID sql.NullString
		subStatus, subPlan                               sql.NullString
		verificationExpiry, resetExpiry, lastLogin       sql.NullTime
		periodEnd, eventAt                               sql.NullTime
	)
	if err := row.Scan(&u.UUID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsEmailVerified,
		&verificationToken, &verificationExpiry, &resetToken, &resetExpiry,
		&lastLogin, &u.Avatar, &customerID, &subID, &subStatus, &subPlan,
		&periodEnd, &eventAt, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.VerificationToken = verificationToken.String
	u.ResetPasswordToken = resetToken.String
	u.StripeCustomerID = customerID.String
	u.SubscriptionID = subID.String
	u.SubscriptionStatus = subStatus.String
	u.SubscriptionPlan = subPlan.String
	u.VerificationTokenExpiry = nullTime(verificationExpiry)
	u.ResetPasswordTokenExpiry = nullTime(resetExpiry)
	u.LastLogin = nullTime(lastLogin)
	u.SubscriptionCurrentPeriod = nullTime(periodEnd)
	u.SubscriptionEventAt = nullTime(eventAt)
	return &u, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
//
// Занятый email возвращает errs.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (name, email, password_hash, role, is_email_verified,
			      verification_token, verification_token_expiry,
			      subscription_status, subscription_plan, subscription_current_period_end)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING uid`
	var newID string
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role, user.IsEmailVerified,
		nullString(user.VerificationToken), user.VerificationTokenExpiry,
		nullString(user.SubscriptionStatus), nullString(user.SubscriptionPlan), user.SubscriptionCurrentPeriod,
	).Scan(&newID); err != nil {
		return "", wrapErr(op, err)
	}
	return newID, nil
}

// GetUserByID возвращает пользователя по UID.
func (s *Storage) GetUserByID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByID"
	return s.getUser(ctx, op, `uid = $1`, userUID)
}

// GetUserByEmail возвращает пользователя по email без учёта регистра.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.getUser(ctx, op, `LOWER(email) = LOWER($1)`, email)
}

// GetUserByVerificationToken ищет пользователя с неистёкшим токеном подтверждения email.
func (s *Storage) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	const op = "storage.GetUserByVerificationToken"
	return s.getUser(ctx, op, `verification_token = $1 AND verification_token_expiry > NOW()`, token)
}

// GetUserByResetToken ищет пользователя с неистёкшим токеном сброса пароля.
func (s *Storage) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	const op = "storage.GetUserByResetToken"
	return s.getUser(ctx, op, `reset_password_token = $1 AND reset_password_token_expiry > NOW()`, token)
}

// GetUserBySubscriptionID ищет владельца подписки провайдера.
func (s *Storage) GetUserBySubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error) {
	const op = "storage.GetUserBySubscriptionID"
	return s.getUser(ctx, op, `subscription_id = $1`, subscriptionID)
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` LIMIT 1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return u, nil
}

// ListUsers возвращает страницу пользователей (новые первыми) и общее число совпадений.
func (s *Storage) ListUsers(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	where := `WHERE ($1::text = '' OR name ILIKE $2 OR email ILIKE $2)
			    AND ($3::text = '' OR role = $3::text)`
	pattern := "%" + escapeLike(filter.Search) + "%"

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users `+where,
		filter.Search, pattern, filter.Role).Scan(&total); err != nil {
		return nil, 0, wrapErr(op, err)
	}

	query := `SELECT ` + userColumns + ` FROM users ` + where + `
			  ORDER BY created_at DESC
			  LIMIT $4 OFFSET $5`
	rows, err := s.DB.QueryContext(ctx, query, filter.Search, pattern, filter.Role, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, wrapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.User, 0, filter.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, wrapErr(op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrapErr(op, err)
	}
	return result, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// UpdateUser меняет имя, email и роль.
//
// Повышение до admin закрепляет бессрочное право доступа, понижение очищает поля подписки.
func (s *Storage) UpdateUser(ctx context.Context, userUID string, upd models.UserUpdate) (*models.User, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET
			      name = $2,
			      email = $3,
			      subscription_status = CASE
			          WHEN $4::text = 'admin' THEN 'active'
			          WHEN role = 'admin' THEN NULL
			          ELSE subscription_status END,
			      subscription_plan = CASE
			          WHEN $4::text = 'admin' THEN $5
			          WHEN role = 'admin' THEN NULL
			          ELSE subscription_plan END,
			      subscription_current_period_end = CASE
			          WHEN $4::text = 'admin' THEN $6
			          WHEN role = 'admin' THEN NULL
			          ELSE subscription_current_period_end END,
			      subscription_id = CASE WHEN role = 'admin' AND $4::text <> 'admin' THEN NULL ELSE subscription_id END,
			      role = $4::text,
			      updated_at = NOW()
			  WHERE uid = $1
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query,
		userUID, upd.Name, upd.Email, upd.Role, models.AdminPlan, models.AdminPeriodEnd))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return u, nil
}

// PromoteToAdmin назначает роль admin и закрепляет бессрочное право доступа.
func (s *Storage) PromoteToAdmin(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.PromoteToAdmin"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET
			      role = 'admin',
			      subscription_status = 'active',
			      subscription_plan = $2,
			      subscription_current_period_end = $3,
			      updated_at = NOW()
			  WHERE LOWER(email) = LOWER($1)
			  RETURNING ` + userColumns
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email, models.AdminPlan, models.AdminPeriodEnd))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return u, nil
}

// MarkEmailVerified подтверждает email и удаляет токен подтверждения.
func (s *Storage) MarkEmailVerified(ctx context.Context, userUID string) error {
	const op = "storage.MarkEmailVerified"
	return s.exec(ctx, op, `UPDATE users
			  SET is_email_verified = TRUE, verification_token = NULL, verification_token_expiry = NULL,
			      updated_at = NOW()
			  WHERE uid = $1`, userUID)
}

// SetVerificationToken сохраняет новый токен подтверждения email.
func (s *Storage) SetVerificationToken(ctx context.Context, userUID, token string, expiry time.Time) error {
	const op = "storage.SetVerificationToken"
	return s.exec(ctx, op, `UPDATE users
			  SET verification_token = $2, verification_token_expiry = $3, updated_at = NOW()
			  WHERE uid = $1`, userUID, token, expiry)
}

// SetResetPasswordToken сохраняет токен сброса пароля.
func (s *Storage) SetResetPasswordToken(ctx context.Context, userUID, token string, expiry time.Time) error {
	const op = "storage.SetResetPasswordToken"
	return s.exec(ctx, op, `UPDATE users
			  SET reset_password_token = $2, reset_password_token_expiry = $3, updated_at = NOW()
			  WHERE uid = $1`, userUID, token, expiry)
}

// ResetPassword устанавливает новый хеш пароля и удаляет токен сброса.
func (s *Storage) ResetPassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.ResetPassword"
	return s.exec(ctx, op, `UPDATE users
			  SET password_hash = $2, reset_password_token = NULL, reset_password_token_expiry = NULL,
			      updated_at = NOW()
			  WHERE uid = $1`, userUID, passwordHash)
}

// UpdateLastLogin фиксирует время последнего входа.
func (s *Storage) UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error {
	const op = "storage.UpdateLastLogin"
	return s.exec(ctx, op, `UPDATE users SET last_login = $2 WHERE uid = $1`, userUID, at)
}

// SetStripeCustomerID сохраняет идентификатор клиента у платёжного провайдера.
func (s *Storage) SetStripeCustomerID(ctx context.Context, userUID, customerID string) error {
	const op = "storage.SetStripeCustomerID"
	return s.exec(ctx, op, `UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE uid = $1`,
		userUID, customerID)
}

// ApplySubscriptionChange записывает состояние подписки из события биллинга.
//
// Строки администраторов не изменяются. Событие старше уже применённого
// (subscription_event_at) игнорируется. Возвращает false, если ничего не изменилось.
func (s *Storage) ApplySubscriptionChange(ctx context.Context, userUID string, change models.SubscriptionChange) (bool, error) {
	const op = "storage.ApplySubscriptionChange"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET
			      subscription_id = COALESCE(NULLIF($2, ''), subscription_id),
			      subscription_status = COALESCE(NULLIF($3, ''), subscription_status),
			      subscription_plan = COALESCE(NULLIF($4, ''), subscription_plan),
			      subscription_current_period_end = COALESCE($5, subscription_current_period_end),
			      subscription_event_at = $6,
			      updated_at = NOW()
			  WHERE uid = $1
			    AND role <> 'admin'
			    AND (subscription_event_at IS NULL OR subscription_event_at <= $6)`
	res, err := s.DB.ExecContext(ctx, query, userUID,
		change.SubscriptionID, change.Status, change.Plan, change.PeriodEnd, change.EventAt)
	if err != nil {
		return false, wrapErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr(op, err)
	}
	return n > 0, nil
}

func (s *Storage) exec(ctx context.Context, op, query string, args ...any) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	return nil
}
