package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saaskit/internal/errs"
	"github.com/magabrotheeeer/saaskit/internal/http/response"
	"github.com/magabrotheeeer/saaskit/internal/lib/sl"
	"github.com/magabrotheeeer/saaskit/internal/models"
)

// UserGetter загружает учётную запись по id.
type UserGetter interface {
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
}

// RequireAdmin пропускает только администраторов.
//
// Роль проверяется по хранилищу, а не по claims: токен мог быть выпущен до смены роли.
// Если шлюз не проверял токен (публичный путь), токен проверяется здесь.
func RequireAdmin(log *slog.Logger, verifier TokenVerifier, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireAdmin"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			ctx := r.Context()
			userID, ok := UserIDFromContext(ctx)
			if !ok {
				token := ExtractToken(r)
				if token == "" {
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("authentication required"))
					return
				}
				claims, err := verifier.Verify(token)
				if err != nil {
					log.Info("token rejected", sl.Err(err))
					render.Status(r, http.StatusUnauthorized)
					render.JSON(w, r, response.Error("invalid or expired token"))
					return
				}
				ctx = WithClaims(ctx, claims)
				userID = claims.UserID()
			}

			user, err := users.GetUserByID(ctx, userID)
			if err != nil {
				if errors.Is(err, errs.ErrNotFound) {
					render.Status(r, http.StatusForbidden)
					render.JSON(w, r, response.Error("insufficient permissions"))
					return
				}
				log.Error("failed to load user", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal server error"))
				return
			}
			if !user.IsAdmin() {
				log.Warn("admin access denied", slog.String("user_id", userID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("insufficient permissions"))
				return
			}

			ctx = context.WithValue(ctx, Role, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
