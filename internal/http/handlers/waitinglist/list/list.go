// Package list отдаёт администратору заявки листа ожидания.
package list

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

// Response страница заявок, новые первыми.
type Response struct {
	response.Response
	Entries []*models.WaitingListEntry `json:"entries"`
	Total   int                        `json:"total"`
	Page    int                        `json:"page"`
	Limit   int                        `json:"limit"`
}

// WaitingListService определяет выборку заявок.
type WaitingListService interface {
	List(ctx context.Context, limit, offset int) ([]*models.WaitingListEntry, int, error)
}

// Handler обрабатывает GET /api/waiting-list.
type Handler struct {
	log  *slog.Logger
	list WaitingListService
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, list WaitingListService) *Handler {
	return &Handler{log: log, list: list}
}

// ServeHTTP godoc
// @Summary Заявки листа ожидания
// @Tags WaitingList
// @Produce  json
// @Param page query int false "Номер страницы, с 1"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} Response
// @Failure 403 {object} response.Response "Нет прав администратора"
// @Security BearerAuth
// @Router /api/waiting-list [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.waitinglist.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0
	}
	limit = usersservice.NormalizeLimit(limit)

	entries, total, err := h.list.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		log.Error("failed to list waiting list", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*models.WaitingListEntry{}
	}

	render.JSON(w, r, Response{
		Response: response.OK("ok"),
		Entries:  entries,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}
