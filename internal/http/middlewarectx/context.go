// Package middlewarectx содержит middleware HTTP-сервера: шлюз доступа,
// проверку роли администратора и ограничение частоты запросов.
// Данные о пользователе передаются дальше через контекст запроса.
package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/saaskit/internal/lib/jwt"
)

// Key тип ключей контекста этого пакета.
type Key string

// Ключи контекста.
const (
	UserID Key = "user_id"
	Role   Key = "role"
	Claims Key = "claims"
)

// WithClaims кладёт claims токена в контекст.
func WithClaims(ctx context.Context, claims *jwt.SessionClaims) context.Context {
	ctx = context.WithValue(ctx, UserID, claims.UserID())
	ctx = context.WithValue(ctx, Role, claims.Role)
	return context.WithValue(ctx, Claims, claims)
}

// UserIDFromContext возвращает id пользователя, если шлюз его установил.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserID).(string)
	return id, ok && id != ""
}

// ClaimsFromContext возвращает claims проверенного токена.
func ClaimsFromContext(ctx context.Context) (*jwt.SessionClaims, bool) {
	c, ok := ctx.Value(Claims).(*jwt.SessionClaims)
	return c, ok && c != nil
}
