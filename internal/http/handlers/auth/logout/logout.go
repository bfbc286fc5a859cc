// Package logout реализует выход: удаление cookie с токеном.
package logout

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saaskit/internal/http/cookie"
	"github.com/magabrotheeeer/saaskit/internal/http/response"
)

// Handler обрабатывает POST /api/auth/logout.
type Handler struct {
	secureCookie bool
}

// New создает новый экземпляр Handler.
func New(secureCookie bool) *Handler {
	return &Handler{secureCookie: secureCookie}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Удаляет cookie token. Сам токен остаётся действительным до истечения срока
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /api/auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cookie.Clear(w, h.secureCookie)
	render.JSON(w, r, response.OK("Logged out"))
}
