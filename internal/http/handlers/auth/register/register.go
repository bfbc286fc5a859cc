// Package register реализует HTTP-обработчик регистрации новых пользователей.
package register

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
	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	authservice "github.com/magabrotheeeer/saaskit/internal/services/auth"
)

// Request входные данные для регистрации
type Request struct {
	Name     string `json:"name" validate:"required,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Response ответ на успешную регистрацию.
// EmailError заполнен, если письмо подтверждения не удалось отправить.
type Response struct {
	response.Response
	UserID     string `json:"userId"`
	EmailError string `json:"emailError,omitempty"`
}

// AuthService определяет регистрацию пользователя.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*authservice.RegisterResult, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	auth     AuthService
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth AuthService) *Handler {
	return &Handler{
		log:      log,
		auth:     auth,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация нового пользователя
// @Description Создает неподтверждённую учётную запись и отправляет письмо со ссылкой подтверждения
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового пользователя"
// @Success 201 {object} Response "Пользователь создан"
// @Failure 400 {object} response.Response "Некорректный JSON или ошибка валидации"
// @Failure 409 {object} response.Response "Email уже зарегистрирован"
// @Failure 500 {object} response.Response "Ошибка сервера"
// @Router /api/auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("user with this email already exists"))
			return
		}
		if !errors.Is(err, errs.ErrValidation) {
			log.Error("registration failed", sl.Err(err))
		}
		response.RenderError(w, r, err)
		return
	}

	resp := Response{
		Response: response.OK("User registered successfully. Please check your email to verify your account."),
		UserID:   res.UserID,
	}
	if res.EmailErr != nil {
		resp.Message = "User registered, but the verification email could not be sent."
		resp.EmailError = "failed to send verification email"
	}

	log.Info("register success", slog.String("user_id", res.UserID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}
