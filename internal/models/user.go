// Package models содержит доменные модели сервиса: учётную запись, право доступа
// (entitlement), настройки сайта, лист ожидания, письма и события биллинга.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет учётную запись пользователя.
type User struct {
	UUID                      string
	Name                      string
	Email                     string
	PasswordHash              string
	Role                      string
	IsEmailVerified           bool
	VerificationToken         string
	VerificationTokenExpiry   *time.Time
	ResetPasswordToken        string
	ResetPasswordTokenExpiry  *time.Time
	LastLogin                 *time.Time
	Avatar                    string
	StripeCustomerID          string
	SubscriptionID            string
	SubscriptionStatus        string
	SubscriptionPlan          string
	SubscriptionCurrentPeriod *time.Time
	SubscriptionEventAt       *time.Time
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// IsAdmin сообщает, является ли пользователь администратором.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Entitlement возвращает фактическое право доступа пользователя.
//
// Для администратора сохранённые поля подписки не учитываются.
func (u *User) Entitlement() Entitlement {
	if u.IsAdmin() {
		return AdministrativeUnlimited{}
	}
	return Standard{
		Status:    u.SubscriptionStatus,
		Plan:      u.SubscriptionPlan,
		PeriodEnd: u.SubscriptionCurrentPeriod,
	}
}

// NeedsUpgrade true, если у обычного пользователя нет тарифа.
func (u *User) NeedsUpgrade() bool {
	return !u.IsAdmin() && u.SubscriptionPlan == ""
}

// UserView проекция пользователя для ответов API. Пароль и токены в неё не попадают.
type UserView struct {
	ID                           string     `json:"id"`
	Name                         string     `json:"name"`
	Email                        string     `json:"email"`
	Role                         string     `json:"role"`
	Avatar                       string     `json:"avatar,omitempty"`
	IsEmailVerified              bool       `json:"isEmailVerified"`
	LastLogin                    *time.Time `json:"lastLogin,omitempty"`
	SubscriptionStatus           string     `json:"subscriptionStatus,omitempty"`
	SubscriptionPlan             string     `json:"subscriptionPlan,omitempty"`
	SubscriptionCurrentPeriodEnd *time.Time `json:"subscriptionCurrentPeriodEnd,omitempty"`
	CreatedAt                    time.Time  `json:"createdAt"`
}

// View строит UserView с учётом entitlement.
func (u *User) View() UserView {
	v := UserView{
		ID:              u.UUID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		Avatar:          u.Avatar,
		IsEmailVerified: u.IsEmailVerified,
		LastLogin:       u.LastLogin,
		CreatedAt:       u.CreatedAt,
	}
	e := u.Entitlement()
	v.SubscriptionStatus = e.SubscriptionStatus()
	v.SubscriptionPlan = e.SubscriptionPlan()
	v.SubscriptionCurrentPeriodEnd = e.SubscriptionPeriodEnd()
	return v
}

// UserFilter задаёт фильтры и пагинацию для административного списка.
type UserFilter struct {
	Search string
	Role   string
	Limit  int
	Offset int
}

// UserUpdate изменения учётной записи, доступные администратору.
type UserUpdate struct {
	Name  string
	Email string
	Role  string
}
