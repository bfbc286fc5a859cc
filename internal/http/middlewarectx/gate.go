package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/http/cookie"
	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/jwt"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/obs"
)

// Адреса перенаправления шлюза.
const (
	LoginPath   = "/login"
	WaitingPath = "/waiting"
)

// TokenVerifier проверяет сессионный токен.
type TokenVerifier interface {
	Verify(token string) (*jwt.SessionClaims, error)
}

// ModeReader сообщает, включён ли режим листа ожидания.
type ModeReader interface {
	IsWaitingListMode(ctx context.Context) bool
}

// Gate возвращает шлюз доступа, который выполняется до любого обработчика.
//
// Порядок проверки:
//  1. Статика пропускается без проверок.
//  2. В режиме листа ожидания страницы, кроме /login, /waiting, API и /admin, перенаправляются на /waiting.
//  3. Публичные пути пропускаются без токена.
//  4. Токен берётся из заголовка Authorization, затем из cookie.
//  5. Без токена или с неверным токеном API отвечает 401, страницы перенаправляются на /login.
//  6. Claims проверенного токена кладутся в контекст.
func Gate(log *slog.Logger, verifier TokenVerifier, mode ModeReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Gate"
			path := r.URL.Path

			class := Classify(path)
			if class == PathStatic {
				next.ServeHTTP(w, r)
				return
			}

			if !exemptFromWaitingList(path) && mode.IsWaitingListMode(r.Context()) {
				obs.GateRejections.WithLabelValues("waiting_list").Inc()
				http.Redirect(w, r, WaitingPath, http.StatusTemporaryRedirect)
				return
			}

			if class == PathPublic {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := ExtractToken(r)
			if token == "" {
				obs.GateRejections.WithLabelValues("missing_token").Inc()
				reject(w, r, "authentication required")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				reason, msg := "invalid_token", "invalid token"
				if errors.Is(err, errs.ErrExpiredToken) {
					reason, msg = "expired_token", "token expired"
				}
				obs.GateRejections.WithLabelValues(reason).Inc()
				log.Info("token rejected", slog.String("path", path), sl.Err(err))
				reject(w, r, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// ExtractToken возвращает токен из заголовка Authorization: Bearer или из cookie.
// Заголовок имеет приоритет.
func ExtractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); token != "" {
			return token
		}
	}
	if c, err := r.Cookie(cookie.Name); err == nil {
		return c.Value
	}
	return ""
}

// reject отвечает 401 для API и перенаправляет страницы на /login с адресом возврата.
func reject(w http.ResponseWriter, r *http.Request, msg string) {
	if IsAPI(r.URL.Path) {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(msg))
		return
	}
	target := LoginPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
