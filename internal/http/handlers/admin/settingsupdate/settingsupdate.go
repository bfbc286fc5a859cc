// Package settingsupdate переключает режим листа ожидания.
package settingsupdate

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

// Request новое значение флага. Указатель отличает false от отсутствия поля.
type Request struct {
	IsWaitingListMode *bool `json:"isWaitingListMode" validate:"required"`
}

// Response настройки после изменения.
type Response struct {
	response.Response
	Settings *models.Settings `json:"settings"`
}

// SettingsService определяет переключение режима.
type SettingsService interface {
	SetWaitingListMode(ctx context.Context, enabled bool) (*models.Settings, error)
}

// Handler обрабатывает PUT /api/admin/settings.
type Handler struct {
	log      *slog.Logger
	settings SettingsService
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, settings SettingsService) *Handler {
	return &Handler{log: log, settings: settings, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Переключение режима листа ожидания
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Новое значение"
// @Success 200 {object} Response
// @Failure 400 {object} response.Response "Поле не передано"
// @Security BearerAuth
// @Router /api/admin/settings [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.settingsupdate"

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

	s, err := h.settings.SetWaitingListMode(r.Context(), *req.IsWaitingListMode)
	if err != nil {
		log.Error("failed to update settings", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("waiting list mode changed", slog.Bool("enabled", s.IsWaitingListMode))
	render.JSON(w, r, Response{Response: response.OK("Settings updated"), Settings: s})
}
