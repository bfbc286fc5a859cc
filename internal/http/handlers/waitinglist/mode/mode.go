// Package mode сообщает публично, включён ли режим листа ожидания.
package mode

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
)

// Response состояние режима.
type Response struct {
	IsWaitingListMode bool `json:"isWaitingListMode"`
}

// ModeReader определяет чтение флага режима.
type ModeReader interface {
	IsWaitingListMode(ctx context.Context) bool
}

// Handler обрабатывает GET /api/waiting-list-mode.
type Handler struct {
	mode ModeReader
}

// New создает новый экземпляр Handler.
func New(mode ModeReader) *Handler {
	return &Handler{mode: mode}
}

// ServeHTTP godoc
// @Summary Режим листа ожидания
// @Tags WaitingList
// @Produce  json
// @Success 200 {object} Response
// @Router /api/waiting-list-mode [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Response{IsWaitingListMode: h.mode.IsWaitingListMode(r.Context())})
}
