// Package checkout создаёт сессию оплаты для текущего пользователя.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/saaskit/internal/http/middlewarectx"
	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
)

// Request выбранная цена и название тарифа.
type Request struct {
	PriceID string `json:"priceId" validate:"required"`
	Plan    string `json:"plan" validate:"required,max=60"`
}

// Response адрес страницы оплаты.
type Response struct {
	response.Response
	URL string `json:"url"`
}

// CheckoutService определяет создание сессии оплаты.
type CheckoutService interface {
	CreateCheckout(ctx context.Context, userID, priceID, plan string) (string, error)
}

// Handler обрабатывает POST /api/stripe/create-checkout.
type Handler struct {
	log      *slog.Logger
	checkout CheckoutService
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, checkout CheckoutService) *Handler {
	return &Handler{log: log, checkout: checkout, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Создание сессии оплаты
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Request true "Цена и тариф"
// @Success 200 {object} Response
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 401 {object} response.Response "Требуется вход"
// @Failure 502 {object} response.Response "Провайдер недоступен"
// @Security BearerAuth
// @Router /api/stripe/create-checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	url, err := h.checkout.CreateCheckout(r.Context(), userID, req.PriceID, req.Plan)
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err), slog.String("user_id", userID))
		response.RenderError(w, r, err)
		return
	}

	log.Info("checkout session created", slog.String("user_id", userID), slog.String("plan", req.Plan))
	render.JSON(w, r, Response{Response: response.OK("ok"), URL: url})
}
