// Package userlist реализует административный список пользователей.
package userlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/models"
	usersservice "github.com/magabrotheeeer/saaskit/internal/services/users"
)

// Response страница пользователей.
type Response struct {
	response.Response
	Users []models.UserView `json:"users"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// UserService определяет выборку пользователей.
type UserService interface {
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error)
}

// Handler обрабатывает GET /api/users.
type Handler struct {
	log   *slog.Logger
	users UserService
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, users UserService) *Handler {
	return &Handler{log: log, users: users}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Поиск по имени и email, фильтр по роли, постраничный вывод
// @Tags Admin
// @Produce  json
// @Param search query string false "Подстрока имени или email"
// @Param role query string false "Роль" Enums(user, admin)
// @Param page query int false "Номер страницы, с 1"
// @Param limit query int false "Размер страницы, не больше 100"
// @Success 200 {object} Response
// @Failure 400 {object} response.Response "Неизвестная роль"
// @Failure 403 {object} response.Response "Нет прав администратора"
// @Security BearerAuth
// @Router /api/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil {
		limit = 0
	}
	limit = usersservice.NormalizeLimit(limit)

	users, total, err := h.users.List(r.Context(), models.UserFilter{
		Search: q.Get("search"),
		Role:   q.Get("role"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}

	log.Info("users listed", slog.Int("count", len(views)))
	render.JSON(w, r, Response{
		Response: response.OK("ok"),
		Users:    views,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}
