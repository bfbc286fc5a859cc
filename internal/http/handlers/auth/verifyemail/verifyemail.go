// Package verifyemail реализует подтверждение email по токену из письма.
package verifyemail

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
)

// Request токен из ссылки подтверждения.
type Request struct {
	Token string `json:"token"`
}

// AuthService определяет подтверждение email.
type AuthService interface {
	VerifyEmail(ctx context.Context, token string) error
}

// Handler обрабатывает POST /api/auth/verify-email.
type Handler struct {
	log  *slog.Logger
	auth AuthService
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth AuthService) *Handler {
	return &Handler{log: log, auth: auth}
}

// ServeHTTP godoc
// @Summary Подтверждение email
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен подтверждения"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response "Токен отсутствует, истёк или неизвестен"
// @Router /api/auth/verify-email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyemail"

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

	if err := h.auth.VerifyEmail(r.Context(), req.Token); err != nil {
		if errors.Is(err, errs.ErrValidation) {
			log.Info("verification token rejected", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid or expired verification token"))
			return
		}
		log.Error("failed to verify email", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.OK("Email verified successfully"))
}
