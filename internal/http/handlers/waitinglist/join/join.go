// Package join реализует запись в лист ожидания.
package join

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
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// Request имя и email посетителя.
type Request struct {
	Name  string `json:"name" validate:"required,max=60"`
	Email string `json:"email" validate:"required,email"`
}

// Response созданная заявка.
type Response struct {
	response.Response
	Entry *models.WaitingListEntry `json:"entry"`
}

// WaitingListService определяет запись в лист ожидания.
type WaitingListService interface {
	Join(ctx context.Context, name, email string) (*models.WaitingListEntry, error)
}

// Handler обрабатывает POST /api/waiting-list.
type Handler struct {
	log      *slog.Logger
	list     WaitingListService
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, list WaitingListService) *Handler {
	return &Handler{log: log, list: list, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Запись в лист ожидания
// @Description Доступно только при включённом режиме листа ожидания
// @Tags WaitingList
// @Accept  json
// @Produce  json
// @Param request body Request true "Имя и email"
// @Success 201 {object} Response
// @Failure 400 {object} response.Response "Режим выключен или ошибка валидации"
// @Failure 409 {object} response.Response "Email уже в списке"
// @Failure 429 {object} response.Response "Слишком много запросов"
// @Router /api/waiting-list [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.waitinglist.join"

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

	entry, err := h.list.Join(r.Context(), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrConflict):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("This email is already on the waiting list"))
		case errors.Is(err, errs.ErrWaitingListInactive):
			response.RenderError(w, r, err)
		default:
			log.Error("failed to join waiting list", sl.Err(err))
			response.RenderError(w, r, err)
		}
		return
	}

	log.Info("waiting list entry added", slog.Int64("entry_id", entry.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{Response: response.OK("Added to waiting list"), Entry: entry})
}
