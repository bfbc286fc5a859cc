// Package services содержит логику аутентификации: регистрацию, вход, обновление
// сессионного токена, подтверждение email и сброс пароля.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/lib/jwt"
	"github.com/magabrotheeeer/saaskit/internal/lib/password"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его UID.
	CreateUser(ctx context.Context, user models.User) (string, error)

	// GetUserByID возвращает пользователя по UID или errs.ErrNotFound.
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)

	// GetUserByEmail возвращает пользователя по email без учёта регистра.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)

	MarkEmailVerified(ctx context.Context, userUID string) error
	SetVerificationToken(ctx context.Context, userUID, token string, expiry time.Time) error
	SetResetPasswordToken(ctx context.Context, userUID, token string, expiry time.Time) error
	ResetPassword(ctx context.Context, userUID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error
}

// TokenMaker выпускает и проверяет токены.
type TokenMaker interface {
	Issue(user *models.User) (string, error)
	IssueEmailVerificationToken() (string, time.Time, error)
	IssuePasswordResetToken() (string, time.Time, error)
	VerifyOpaque(token string) error
}

// Mailer ставит письма в очередь доставки.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

// RegisterResult результат регистрации.
//
// EmailErr заполнен, если учётная запись создана, но письмо подтверждения не отправлено.
type RegisterResult struct {
	UserID   string
	EmailErr error
}

// Session выпущенный сессионный токен и пользователь, из которого взяты claims.
type Session struct {
	User  *models.User
	Token string
}

// AuthService отвечает за регистрацию, вход и жизненный цикл токенов.
type AuthService struct {
	log    *slog.Logger
	users  UserRepository
	tokens TokenMaker
	mailer Mailer
	now    func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(log *slog.Logger, users UserRepository, tokens TokenMaker, mailer Mailer) *AuthService {
	return &AuthService{
		log:    log,
		users:  users,
		tokens: tokens,
		mailer: mailer,
		now:    time.Now,
	}
}

// Register создает неподтверждённую учётную запись с ролью "user" и отправляет письмо
// подтверждения. Ошибка отправки письма не отменяет регистрацию и возвращается в RegisterResult.
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string) (*RegisterResult, error) {
	const op = "services.auth.Register"
	log := s.log.With(slog.String("op", op))

	if len(rawPassword) < password.MinLength {
		return nil, fmt.Errorf("%s: password is too short: %w", op, errs.ErrValidation)
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	token, expiry, err := s.tokens.IssueEmailVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Name:                    strings.TrimSpace(name),
		Email:                   strings.TrimSpace(email),
		PasswordHash:            hashed,
		Role:                    models.RoleUser,
		VerificationToken:       token,
		VerificationTokenExpiry: &expiry,
	}
	userID, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := &RegisterResult{UserID: userID}
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		log.Warn("verification email was not sent", slog.String("user_id", userID), sl.Err(err))
		res.EmailErr = err
	}
	return res, nil
}

// Login проверяет пароль и выпускает сессионный токен.
//
// Неизвестный email и неверный пароль неразличимы (errs.ErrInvalidCredentials).
// Неподтверждённый email возвращает errs.ErrEmailNotVerified.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Session, error) {
	const op = "services.auth.Login"
	log := s.log.With(slog.String("op", op))

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
	}
	if !user.IsEmailVerified {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrEmailNotVerified)
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.UUID, now); err != nil {
		log.Warn("failed to update last login", slog.String("user_id", user.UUID), sl.Err(err))
	} else {
		user.LastLogin = &now
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{User: user, Token: token}, nil
}

// Refresh перевыпускает токен из текущего состояния учётной записи.
func (s *AuthService) Refresh(ctx context.Context, userID string) (*Session, error) {
	const op = "services.auth.Refresh"

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{User: user, Token: token}, nil
}

// VerifyEmail подтверждает email по токену из письма.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	const op = "services.auth.VerifyEmail"

	if token == "" {
		return fmt.Errorf("%s: token is required: %w", op, errs.ErrValidation)
	}
	if err := s.tokens.VerifyOpaque(token); err != nil {
		return fmt.Errorf("%s: invalid or expired token: %w", op, errs.ErrValidation)
	}
	user, err := s.users.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("%s: invalid or expired token: %w", op, errs.ErrValidation)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.MarkEmailVerified(ctx, user.UUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResendVerification выпускает новый токен подтверждения и отправляет письмо.
//
// Для неизвестного или уже подтверждённого email ничего не делает и не сообщает об этом.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	const op = "services.auth.ResendVerification"

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.IsEmailVerified {
		return nil
	}

	token, expiry, err := s.tokens.IssueEmailVerificationToken()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetVerificationToken(ctx, user.UUID, token, expiry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ForgotPassword сохраняет часовой токен сброса и отправляет письмо со ссылкой.
// Неизвестный email молча игнорируется.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const op = "services.auth.ForgotPassword"

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	token, expiry, err := s.tokens.IssuePasswordResetToken()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetResetPasswordToken(ctx, user.UUID, token, expiry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ResetPassword устанавливает новый пароль по токену сброса.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "services.auth.ResetPassword"

	if token == "" {
		return fmt.Errorf("%s: token is required: %w", op, errs.ErrValidation)
	}
	if len(newPassword) < password.MinLength {
		return fmt.Errorf("%s: password is too short: %w", op, errs.ErrValidation)
	}
	if err := s.tokens.VerifyOpaque(token); err != nil {
		return fmt.Errorf("%s: invalid or expired token: %w", op, errs.ErrValidation)
	}
	user, err := s.users.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("%s: invalid or expired token: %w", op, errs.ErrValidation)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.ResetPassword(ctx, user.UUID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var _ TokenMaker = (*jwt.Maker)(nil)
