package models

import "time"

// Типы событий биллинга, которые обрабатывает сервис.
const (
	EventCheckoutCompleted       = "checkout.session.completed"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
)

// BillingEvent проверенное событие провайдера, уже переведённое в доменные типы.
//
// Заполнено ровно одно из полей Checkout, Subscription, Invoice в зависимости от Type.
type BillingEvent struct {
	ID           string
	Type         string
	CreatedAt    time.Time
	Checkout     *CheckoutCompleted
	Subscription *SubscriptionState
	Invoice      *InvoiceEvent
}

// CheckoutCompleted данные завершённой сессии оплаты.
type CheckoutCompleted struct {
	UserID         string
	Plan           string
	SubscriptionID string
	CustomerID     string
}

// SubscriptionState состояние подписки у провайдера.
type SubscriptionState struct {
	ID               string
	UserID           string
	Plan             string
	Status           string
	CurrentPeriodEnd *time.Time
}

// InvoiceEvent данные оплаченного или неоплаченного счёта.
type InvoiceEvent struct {
	SubscriptionID string
}

// SubscriptionChange запись, которую reconciler применяет к учётной записи.
//
// Пустые строковые поля не меняют сохранённые значения.
type SubscriptionChange struct {
	SubscriptionID string
	Status         string
	Plan           string
	PeriodEnd      *time.Time
	EventAt        time.Time
}

// CheckoutRequest параметры создания сессии оплаты.
type CheckoutRequest struct {
	UserID     string
	Email      string
	CustomerID string
	PriceID    string
	Plan       string
	SuccessURL string
	CancelURL  string
}
