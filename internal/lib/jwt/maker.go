// Package jwt реализует сервис токенов: подписанные сессионные токены с claims пользователя
// и короткоживущие непрозрачные токены для подтверждения email и сброса пароля.
//
// Сессия не хранится на сервере. Claims являются снимком учётной записи на момент выпуска
// и обновляются только при повторном выпуске (вход или refresh).
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// Время жизни токенов.
const (
	SessionTTL           = 7 * 24 * time.Hour
	EmailVerificationTTL = 24 * time.Hour
	PasswordResetTTL     = time.Hour
)

// Maker выпускает и проверяет токены, подписанные HS256 общим секретом.
type Maker struct {
	secret []byte
	now    func() time.Time
}

// NewMaker создаёт Maker. Пустой секрет возвращает errs.ErrConfiguration:
// процесс не должен стартовать без него.
func NewMaker(secret string) (*Maker, error) {
	const op = "jwt.NewMaker"
	if secret == "" {
		return nil, fmt.Errorf("%s: jwt secret is empty: %w", op, errs.ErrConfiguration)
	}
	return &Maker{secret: []byte(secret), now: time.Now}, nil
}

// Issue выпускает сессионный токен на 7 дней с текущим состоянием пользователя.
func (m *Maker) Issue(user *models.User) (string, error) {
	const op = "jwt.Issue"
	now := m.now()
	claims := NewSessionClaims(user)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   user.UUID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// Verify проверяет подпись и срок действия сессионного токена.
//
// Возвращает errs.ErrExpiredToken для истёкшего токена и errs.ErrInvalidToken для любого другого сбоя.
func (m *Maker) Verify(token string) (*SessionClaims, error) {
	const op = "jwt.Verify"
	claims := &SessionClaims{}
	if err := m.parse(token, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: missing subject: %w", op, errs.ErrInvalidToken)
	}
	return claims, nil
}

// IssueEmailVerificationToken выпускает непрозрачный токен подтверждения email на 24 часа.
func (m *Maker) IssueEmailVerificationToken() (string, time.Time, error) {
	return m.issueOpaque(EmailVerificationTTL)
}

// IssuePasswordResetToken выпускает непрозрачный токен сброса пароля на 1 час.
func (m *Maker) IssuePasswordResetToken() (string, time.Time, error) {
	return m.issueOpaque(PasswordResetTTL)
}

// VerifyOpaque проверяет подпись и срок непрозрачного токена.
func (m *Maker) VerifyOpaque(token string) error {
	const op = "jwt.VerifyOpaque"
	if err := m.parse(token, &jwt.RegisteredClaims{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Maker) issueOpaque(ttl time.Duration) (string, time.Time, error) {
	const op = "jwt.issueOpaque"
	now := m.now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return signed, expiresAt, nil
}

func (m *Maker) parse(token string, claims jwt.Claims) error {
	if token == "" {
		return errs.ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errs.ErrExpiredToken
	case err != nil:
		return fmt.Errorf("%w: %s", errs.ErrInvalidToken, err.Error())
	case !parsed.Valid:
		return errs.ErrInvalidToken
	}
	return nil
}
