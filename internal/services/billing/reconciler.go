// Package services сводит состояние подписок учётных записей к состоянию платёжного
// провайдера по событиям вебхука и создаёт сессии оплаты.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// Outcome результат обработки одного события.
type Outcome string

// Возможные результаты обработки события.
const (
	OutcomeApplied      Outcome = "applied"
	OutcomeSkippedAdmin Outcome = "skipped_admin"
	OutcomeSkippedStale Outcome = "skipped_stale"
	OutcomeDropped      Outcome = "dropped"
	OutcomeIgnored      Outcome = "ignored"
)

// UserRepository доступ к учётным записям, нужный reconciler.
type UserRepository interface {
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
	GetUserBySubscriptionID(ctx context.Context, subscriptionID string) (*models.User, error)
	ApplySubscriptionChange(ctx context.Context, userUID string, change models.SubscriptionChange) (bool, error)
}

// SubscriptionProvider читает подписку у провайдера.
type SubscriptionProvider interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*models.SubscriptionState, error)
}

// Reconciler применяет события биллинга к учётным записям.
//
// Запись идемпотентна: повтор события перезаписывает те же значения. Событие старше
// последнего применённого отбрасывается хранилищем. Администраторов события не касаются.
type Reconciler struct {
	log      *slog.Logger
	users    UserRepository
	provider SubscriptionProvider
}

// NewReconciler создаёт Reconciler.
func NewReconciler(log *slog.Logger, users UserRepository, provider SubscriptionProvider) *Reconciler {
	return &Reconciler{
		log:      log,
		users:    users,
		provider: provider,
	}
}

// Reconcile обрабатывает проверенное событие.
//
// Ошибка возвращается только при сбое хранилища или провайдера: тогда провайдер
// повторит доставку. Недостающие данные и неизвестные пользователи дают OutcomeDropped.
func (r *Reconciler) Reconcile(ctx context.Context, ev *models.BillingEvent) (Outcome, error) {
	const op = "services.billing.Reconcile"
	log := r.log.With(
		slog.String("op", op),
		slog.String("event_id", ev.ID),
		slog.String("event_type", ev.Type),
	)

	var (
		outcome Outcome
		err     error
	)
	switch ev.Type {
	case models.EventCheckoutCompleted:
		outcome, err = r.checkoutCompleted(ctx, log, ev)
	case models.EventSubscriptionUpdated, models.EventSubscriptionDeleted:
		outcome, err = r.subscriptionChanged(ctx, log, ev)
	case models.EventInvoicePaymentSucceeded:
		outcome, err = r.invoicePaid(ctx, log, ev)
	case models.EventInvoicePaymentFailed:
		outcome, err = r.invoiceFailed(ctx, log, ev)
	default:
		outcome = OutcomeIgnored
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	log.Info("billing event processed", slog.String("outcome", string(outcome)))
	return outcome, nil
}

func (r *Reconciler) checkoutCompleted(ctx context.Context, log *slog.Logger, ev *models.BillingEvent) (Outcome, error) {
	co := ev.Checkout
	if co == nil || co.UserID == "" || co.Plan == "" || co.SubscriptionID == "" {
		log.Warn("checkout session without userId, plan or subscription")
		return OutcomeDropped, nil
	}
	if !validUserID(co.UserID) {
		log.Warn("checkout session with malformed userId", slog.String("user_id", co.UserID))
		return OutcomeDropped, nil
	}

	user, err := r.users.GetUserByID(ctx, co.UserID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			log.Warn("checkout for unknown user", slog.String("user_id", co.UserID))
			return OutcomeDropped, nil
		}
		return "", err
	}
	if user.IsAdmin() {
		return OutcomeSkippedAdmin, nil
	}

	state, err := r.provider.GetSubscription(ctx, co.SubscriptionID)
	if err != nil {
		return "", err
	}
	return r.apply(ctx, user.UUID, models.SubscriptionChange{
		SubscriptionID: co.SubscriptionID,
		Status:         state.Status,
		Plan:           co.Plan,
		PeriodEnd:      state.CurrentPeriodEnd,
		EventAt:        ev.CreatedAt,
	})
}

func (r *Reconciler) subscriptionChanged(ctx context.Context, log *slog.Logger, ev *models.BillingEvent) (Outcome, error) {
	sub := ev.Subscription
	if sub == nil || sub.ID == "" {
		log.Warn("subscription event without subscription")
		return OutcomeDropped, nil
	}

	user, err := r.resolveUser(ctx, sub.UserID, sub.ID)
	if err != nil {
		return "", err
	}
	if user == nil {
		log.Warn("subscription of unknown user", slog.String("subscription_id", sub.ID))
		return OutcomeDropped, nil
	}
	if user.IsAdmin() {
		return OutcomeSkippedAdmin, nil
	}
	if replaced(log, user, sub.ID) {
		return OutcomeSkippedStale, nil
	}

	// subscription_id меняет только checkout: событие подписки обновляет статус и период.
	return r.apply(ctx, user.UUID, models.SubscriptionChange{
		Status:    sub.Status,
		Plan:      sub.Plan,
		PeriodEnd: sub.CurrentPeriodEnd,
		EventAt:   ev.CreatedAt,
	})
}

func (r *Reconciler) invoicePaid(ctx context.Context, log *slog.Logger, ev *models.BillingEvent) (Outcome, error) {
	if ev.Invoice == nil || ev.Invoice.SubscriptionID == "" {
		log.Warn("invoice without subscription")
		return OutcomeDropped, nil
	}
	subID := ev.Invoice.SubscriptionID

	state, err := r.provider.GetSubscription(ctx, subID)
	if err != nil {
		return "", err
	}
	user, err := r.resolveUser(ctx, state.UserID, subID)
	if err != nil {
		return "", err
	}
	if user == nil {
		log.Warn("paid invoice of unknown user", slog.String("subscription_id", subID))
		return OutcomeDropped, nil
	}
	if user.IsAdmin() {
		return OutcomeSkippedAdmin, nil
	}
	if replaced(log, user, subID) {
		return OutcomeSkippedStale, nil
	}

	return r.apply(ctx, user.UUID, models.SubscriptionChange{
		Status:    models.SubscriptionActive,
		PeriodEnd: state.CurrentPeriodEnd,
		EventAt:   ev.CreatedAt,
	})
}

func (r *Reconciler) invoiceFailed(ctx context.Context, log *slog.Logger, ev *models.BillingEvent) (Outcome, error) {
	if ev.Invoice == nil || ev.Invoice.SubscriptionID == "" {
		log.Warn("invoice without subscription")
		return OutcomeDropped, nil
	}
	subID := ev.Invoice.SubscriptionID

	user, err := r.resolveUser(ctx, "", subID)
	if err != nil {
		return "", err
	}
	if user == nil {
		log.Warn("failed invoice of unknown user", slog.String("subscription_id", subID))
		return OutcomeDropped, nil
	}
	if user.IsAdmin() {
		return OutcomeSkippedAdmin, nil
	}

	return r.apply(ctx, user.UUID, models.SubscriptionChange{
		Status:  models.SubscriptionPastDue,
		EventAt: ev.CreatedAt,
	})
}

// replaced true, если у пользователя уже другая подписка и событие относится к прежней.
func replaced(log *slog.Logger, user *models.User, subscriptionID string) bool {
	if user.SubscriptionID == "" || user.SubscriptionID == subscriptionID {
		return false
	}
	log.Info("event for a replaced subscription",
		slog.String("subscription_id", subscriptionID),
		slog.String("current_subscription_id", user.SubscriptionID),
	)
	return true
}

// validUserID отсекает userId из metadata, который не может быть ключом учётной записи.
func validUserID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// resolveUser ищет владельца подписки: сначала по userId из metadata, затем по subscription_id.
// Некорректный userId считается отсутствующим. Возвращает nil без ошибки, если владелец не найден.
func (r *Reconciler) resolveUser(ctx context.Context, userID, subscriptionID string) (*models.User, error) {
	if validUserID(userID) {
		user, err := r.users.GetUserByID(ctx, userID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
	}
	user, err := r.users.GetUserBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *Reconciler) apply(ctx context.Context, userID string, change models.SubscriptionChange) (Outcome, error) {
	applied, err := r.users.ApplySubscriptionChange(ctx, userID, change)
	if err != nil {
		return "", err
	}
	if !applied {
		return OutcomeSkippedStale, nil
	}
	return OutcomeApplied, nil
}
