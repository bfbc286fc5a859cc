// Package settingsget отдаёт текущие настройки сайта.
package settingsget

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// Response настройки сайта.
type Response struct {
	response.Response
	Settings *models.Settings `json:"settings"`
}

// SettingsService определяет чтение настроек.
type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
}

// Handler обрабатывает GET /api/admin/settings.
type Handler struct {
	log      *slog.Logger
	settings SettingsService
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, settings SettingsService) *Handler {
	return &Handler{log: log, settings: settings}
}

// ServeHTTP godoc
// @Summary Настройки сайта
// @Tags Admin
// @Produce  json
// @Success 200 {object} Response
// @Security BearerAuth
// @Router /api/admin/settings [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.settingsget"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	s, err := h.settings.Get(r.Context())
	if err != nil {
		log.Error("failed to get settings", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, Response{Response: response.OK("ok"), Settings: s})
}
