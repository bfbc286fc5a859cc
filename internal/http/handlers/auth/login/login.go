// Package login реализует HTTP-обработчик входа пользователя.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/http/cookie"
	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/models"
	authservice "github.com/magabrotheeeer/saaskit/internal/services/auth"
)

// Request входные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Response ответ на успешный вход. Токен также выставляется в cookie.
type Response struct {
	response.Response
	User         models.UserView `json:"user"`
	Token        string          `json:"token"`
	NeedsUpgrade bool            `json:"needsUpgrade"`
}

// AuthService определяет вход пользователя.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*authservice.Session, error)
}

// Handler обрабатывает HTTP-запросы входа пользователей.
type Handler struct {
	log          *slog.Logger
	auth         AuthService
	secureCookie bool
	validate     *validator.Validate
}

// New создает новый экземпляр Handler. secureCookie включает флаг Secure у cookie.
func New(log *slog.Logger, auth AuthService, secureCookie bool) *Handler {
	return &Handler{
		log:          log,
		auth:         auth,
		secureCookie: secureCookie,
		validate:     validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль, возвращает сессионный токен и выставляет cookie token
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и пароль"
// @Success 200 {object} Response "Успешный вход"
// @Failure 400 {object} response.Response "Некорректный JSON или ошибка валидации"
// @Failure 401 {object} response.Response "Неверный email или пароль"
// @Failure 403 {object} response.Response "Email не подтверждён"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /api/auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidCredentials):
			log.Info("invalid credentials")
		case errors.Is(err, errs.ErrEmailNotVerified):
			log.Info("email not verified")
		default:
			log.Error("login failed", sl.Err(err))
		}
		response.RenderError(w, r, err)
		return
	}

	cookie.SetToken(w, sess.Token, h.secureCookie)

	log.Info("login success", slog.String("user_id", sess.User.UUID))
	render.JSON(w, r, Response{
		Response:     response.OK("Login successful"),
		User:         sess.User.View(),
		Token:        sess.Token,
		NeedsUpgrade: sess.User.NeedsUpgrade(),
	})
}
