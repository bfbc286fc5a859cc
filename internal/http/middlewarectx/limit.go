package middlewarectx

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/obs"
)

// TooManyRequestsMessage текст ответа 429.
const TooManyRequestsMessage = "Too many requests, please try again later."

// Allower решает, укладывается ли запрос в лимит.
type Allower interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitMiddleware ограничивает частоту запросов по ключу "адрес клиента + путь".
// Ошибка счётчика пропускает запрос.
func RateLimitMiddleware(log *slog.Logger, limiter Allower) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RateLimit"

			key := ClientIP(r) + ":" + r.URL.Path
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Warn("rate limit counter failed, request allowed",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				obs.RateLimitRejections.Inc()
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error(TooManyRequestsMessage))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP возвращает адрес клиента: первый адрес X-Forwarded-For, X-Real-IP или RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
