// Package usercreate реализует создание пользователя администратором.
package usercreate

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
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// Request данные новой учётной записи. Email считается подтверждённым.
type Request struct {
	Name     string `json:"name" validate:"required,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=user admin"`
}

// Response созданный пользователь.
type Response struct {
	response.Response
	User models.UserView `json:"user"`
}

// UserService определяет создание пользователя.
type UserService interface {
	Create(ctx context.Context, name, email, rawPassword, role string) (*models.User, error)
}

// Handler обрабатывает POST /api/users.
type Handler struct {
	log      *slog.Logger
	users    UserService
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users UserService) *Handler {
	return &Handler{log: log, users: users, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Создание пользователя
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} Response
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 409 {object} response.Response "Email уже занят"
// @Security BearerAuth
// @Router /api/users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.usercreate"

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

	user, err := h.users.Create(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		log.Error("failed to create user", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("user created", slog.String("user_id", user.UUID), slog.String("role", user.Role))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{Response: response.OK("User created"), User: user.View()})
}
