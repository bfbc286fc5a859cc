// Package userupdate реализует изменение пользователя администратором.
package userupdate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// Request новые имя, email и роль.
type Request struct {
	Name  string `json:"name" validate:"required,max=60"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=user admin"`
}

// Response пользователь после изменения.
type Response struct {
	response.Response
	User models.UserView `json:"user"`
}

// UserService определяет изменение пользователя.
type UserService interface {
	Update(ctx context.Context, userID string, upd models.UserUpdate) (*models.User, error)
}

// Handler обрабатывает PUT /api/users/{id}.
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
// @Summary Изменение пользователя
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID пользователя"
// @Param request body Request true "Новые данные"
// @Success 200 {object} Response
// @Failure 400 {object} response.Response "Некорректный ID или ошибка валидации"
// @Failure 404 {object} response.Response "Пользователь не найден"
// @Failure 409 {object} response.Response "Email уже занят"
// @Security BearerAuth
// @Router /api/users/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userupdate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

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

	user, err := h.users.Update(r.Context(), id.String(), models.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		log.Error("failed to update user", sl.Err(err), slog.String("user_id", id.String()))
		response.RenderError(w, r, err)
		return
	}

	log.Info("user updated", slog.String("user_id", user.UUID))
	render.JSON(w, r, Response{Response: response.OK("User updated"), User: user.View()})
}
