package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/magabrotheeeer/saaskit/internal/models"
)

// SessionClaims содержимое сессионного токена. Идентификатор пользователя лежит в sub.
type SessionClaims struct {
	Name                         string           `json:"name"`
	Email                        string           `json:"email"`
	Role                         string           `json:"role"`
	Avatar                       string           `json:"avatar,omitempty"`
	IsEmailVerified              bool             `json:"isEmailVerified"`
	SubscriptionStatus           string           `json:"subscriptionStatus,omitempty"`
	SubscriptionPlan             string           `json:"subscriptionPlan,omitempty"`
	SubscriptionCurrentPeriodEnd *jwt.NumericDate `json:"subscriptionCurrentPeriodEnd,omitempty"`
	jwt.RegisteredClaims
}

// NewSessionClaims собирает claims из учётной записи. Поля подписки берутся из entitlement,
// поэтому администратор всегда получает бессрочный доступ.
func NewSessionClaims(user *models.User) SessionClaims {
	e := user.Entitlement()
	c := SessionClaims{
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		Avatar:             user.Avatar,
		IsEmailVerified:    user.IsEmailVerified,
		SubscriptionStatus: e.SubscriptionStatus(),
		SubscriptionPlan:   e.SubscriptionPlan(),
	}
	if end := e.SubscriptionPeriodEnd(); end != nil {
		c.SubscriptionCurrentPeriodEnd = jwt.NewNumericDate(*end)
	}
	return c
}

// UserID возвращает идентификатор пользователя из токена.
func (c *SessionClaims) UserID() string {
	return c.Subject
}

// PeriodEnd возвращает дату окончания периода подписки, если она есть.
func (c *SessionClaims) PeriodEnd() *time.Time {
	if c.SubscriptionCurrentPeriodEnd == nil {
		return nil
	}
	t := c.SubscriptionCurrentPeriodEnd.Time
	return &t
}
