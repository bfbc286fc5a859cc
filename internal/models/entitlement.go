package models

import "time"

// Статусы подписки.
const (
	SubscriptionActive     = "active"
	SubscriptionCanceled   = "canceled"
	SubscriptionPastDue    = "past_due"
	SubscriptionUnpaid     = "unpaid"
	SubscriptionIncomplete = "incomplete"
)

// AdminPlan тариф, который всегда видит администратор.
const AdminPlan = "pro"

// AdminPeriodEnd условно бесконечная дата окончания периода администратора.
var AdminPeriodEnd = time.Date(3000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Entitlement право доступа пользователя: Standard или AdministrativeUnlimited.
//
// Интерфейс закрыт: реализации есть только в этом пакете.
type Entitlement interface {
	SubscriptionStatus() string
	SubscriptionPlan() string
	SubscriptionPeriodEnd() *time.Time
	isEntitlement()
}

// Standard подписка обычного пользователя, как её видит биллинг.
type Standard struct {
	Status    string
	Plan      string
	PeriodEnd *time.Time
}

func (s Standard) SubscriptionStatus() string        { return s.Status }
func (s Standard) SubscriptionPlan() string          { return s.Plan }
func (s Standard) SubscriptionPeriodEnd() *time.Time { return s.PeriodEnd }
func (Standard) isEntitlement()                      {}

// AdministrativeUnlimited постоянное право администратора, не зависящее от биллинга.
type AdministrativeUnlimited struct{}

func (AdministrativeUnlimited) SubscriptionStatus() string { return SubscriptionActive }
func (AdministrativeUnlimited) SubscriptionPlan() string   { return AdminPlan }
func (AdministrativeUnlimited) SubscriptionPeriodEnd() *time.Time {
	end := AdminPeriodEnd
	return &end
}
func (AdministrativeUnlimited) isEntitlement() {}
