// Package resend реализует повторную отправку письма подтверждения email.
package resend

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
)

// Message ответ, одинаковый для существующих и неизвестных адресов.
const Message = "If the account exists and is not verified, a verification email has been sent"

// Request email учётной записи.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// AuthService определяет операцию над учётной записью по email.
type AuthService interface {
	ResendVerification(ctx context.Context, email string) error
}

// Handler обрабатывает POST /api/auth/resend-verification.
type Handler struct {
	log      *slog.Logger
	auth     AuthService
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth AuthService) *Handler {
	return &Handler{log: log, auth: auth, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Повторная отправка письма подтверждения
// @Description Всегда отвечает 200, чтобы по ответу нельзя было узнать, зарегистрирован ли email
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Router /api/auth/resend-verification [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resend"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	if err := h.auth.ResendVerification(r.Context(), req.Email); err != nil {
		log.Error("request failed", sl.Err(err))
	}
	render.JSON(w, r, response.OK(Message))
}
