// Package webhook принимает события платёжного провайдера и передаёт их reconciler.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/models"
	"github.com/magabrotheeeer/saaskit/internal/obs"
	billingservice "github.com/magabrotheeeer/saaskit/internal/services/billing"
)

// SignatureHeader заголовок с подписью события.
const SignatureHeader = "Stripe-Signature"

// ChangedHeader выставляется, когда событие изменило подписку пользователя.
const ChangedHeader = "X-Subscription-Changed"

const maxBodyBytes = 65536

// Response подтверждение приёма события.
type Response struct {
	Received bool `json:"received"`
}

// EventParser проверяет подпись и разбирает событие.
type EventParser interface {
	ParseWebhook(payload []byte, signature string) (*models.BillingEvent, error)
}

// Reconciler применяет событие к учётной записи.
type Reconciler interface {
	Reconcile(ctx context.Context, ev *models.BillingEvent) (billingservice.Outcome, error)
}

// Handler обрабатывает POST /api/stripe/webhook.
type Handler struct {
	log        *slog.Logger
	parser     EventParser
	reconciler Reconciler
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, parser EventParser, reconciler Reconciler) *Handler {
	return &Handler{log: log, parser: parser, reconciler: reconciler}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Проверяет подпись, применяет событие к подписке пользователя. Ошибка хранилища возвращает 500, чтобы провайдер повторил доставку.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param Stripe-Signature header string true "Подпись события"
// @Success 200 {object} Response
// @Failure 400 {object} response.Response "Тело не читается"
// @Failure 401 {object} response.Response "Неверная подпись"
// @Failure 500 {object} response.Response "Событие не применено"
// @Router /api/stripe/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read body"))
		return
	}

	ev, err := h.parser.ParseWebhook(payload, r.Header.Get(SignatureHeader))
	if err != nil {
		if errors.Is(err, errs.ErrInvalidSignature) {
			log.Warn("webhook signature rejected")
		} else {
			log.Error("failed to parse webhook", sl.Err(err))
		}
		obs.BillingEvents.WithLabelValues("unknown", "rejected").Inc()
		response.RenderError(w, r, err)
		return
	}

	log = log.With(slog.String("event_id", ev.ID), slog.String("event_type", ev.Type))

	outcome, err := h.reconciler.Reconcile(r.Context(), ev)
	if err != nil {
		log.Error("failed to reconcile event", sl.Err(err))
		obs.BillingEvents.WithLabelValues(ev.Type, "error").Inc()
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process event"))
		return
	}

	obs.BillingEvents.WithLabelValues(ev.Type, string(outcome)).Inc()
	log.Info("webhook processed", slog.String("outcome", string(outcome)))

	if outcome == billingservice.OutcomeApplied {
		w.Header().Set(ChangedHeader, "true")
	}
	render.JSON(w, r, Response{Received: true})
}
