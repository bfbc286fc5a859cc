// Package refresh реализует перевыпуск сессионного токена из текущего состояния учётной записи.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/http/cookie"
	"github.com/magabrotheeeer/saaskit/internal/http/middlewarectx"
	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/models"
	authservice "github.com/magabrotheeeer/saaskit/internal/services/auth"
)

// Response новый токен и актуальные данные пользователя.
type Response struct {
	response.Response
	User  models.UserView `json:"user"`
	Token string          `json:"token"`
}

// AuthService определяет перевыпуск токена.
type AuthService interface {
	Refresh(ctx context.Context, userID string) (*authservice.Session, error)
}

// Handler обрабатывает POST /api/auth/refresh.
type Handler struct {
	log          *slog.Logger
	auth         AuthService
	secureCookie bool
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth AuthService, secureCookie bool) *Handler {
	return &Handler{log: log, auth: auth, secureCookie: secureCookie}
}

// ServeHTTP godoc
// @Summary Обновление токена
// @Description Перевыпускает токен по текущему состоянию учётной записи (роль, подписка)
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} response.Response "Не аутентифицирован"
// @Failure 404 {object} response.Response "Учётная запись не найдена"
// @Router /api/auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

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

	sess, err := h.auth.Refresh(r.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to refresh token", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	cookie.SetToken(w, sess.Token, h.secureCookie)
	render.JSON(w, r, Response{
		Response: response.OK("Token refreshed"),
		User:     sess.User.View(),
		Token:    sess.Token,
	})
}
