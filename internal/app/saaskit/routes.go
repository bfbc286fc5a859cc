// Package saaskit собирает HTTP API: шлюз доступа, маршруты аутентификации,
// администрирования, биллинга и листа ожидания.
package saaskit

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/saaskit/internal/http/handlers/admin/settingsget"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/admin/settingsupdate"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/admin/usercreate"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/admin/userupdate"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/auth/resend"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/auth/verifyemail"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/billing/checkout"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/health"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/waitinglist/join"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/waitinglist/list"
	"github.com/magabrotheeeer/saaskit/internal/http/handlers/waitinglist/mode"
	"github.com/magabrotheeeer/saaskit/internal/http/middlewarectx"
	"github.com/magabrotheeeer/saaskit/internal/lib/jwt"
	"github.com/magabrotheeeer/saaskit/internal/obs"
	"github.com/magabrotheeeer/saaskit/internal/paymentprovider"
	"github.com/magabrotheeeer/saaskit/internal/ratelimit"
	authservice "github.com/magabrotheeeer/saaskit/internal/services/auth"
	billingservice "github.com/magabrotheeeer/saaskit/internal/services/billing"
	settingsservice "github.com/magabrotheeeer/saaskit/internal/services/settings"
	usersservice "github.com/magabrotheeeer/saaskit/internal/services/users"
	waitinglistservice "github.com/magabrotheeeer/saaskit/internal/services/waitinglist"
)

// Deps всё, что нужно маршрутам.
type Deps struct {
	Log          *slog.Logger
	Tokens       *jwt.Maker
	Users        middlewarectx.UserGetter
	Auth         *authservice.AuthService
	UserAdmin    *usersservice.UserService
	Settings     *settingsservice.Service
	WaitingList  *waitinglistservice.Service
	Checkout     *billingservice.CheckoutService
	Reconciler   *billingservice.Reconciler
	Provider     *paymentprovider.Client
	Limiter      *ratelimit.Limiter
	HealthChecks map[string]health.Pinger
	SecureCookie bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	log := d.Log

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		obs.Instrument,
		middlewarectx.Gate(log, d.Tokens, d.Settings),
	)

	limited := middlewarectx.RateLimitMiddleware(log, d.Limiter)
	adminOnly := middlewarectx.RequireAdmin(log, d.Tokens, d.Users)

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(limited)
		r.Post("/register", register.New(log, d.Auth).ServeHTTP)
		r.Post("/login", login.New(log, d.Auth, d.SecureCookie).ServeHTTP)
		r.Post("/refresh", refresh.New(log, d.Auth, d.SecureCookie).ServeHTTP)
		r.Post("/logout", logout.New(d.SecureCookie).ServeHTTP)
		r.Post("/verify-email", verifyemail.New(log, d.Auth).ServeHTTP)
		r.Post("/resend-verification", resend.New(log, d.Auth).ServeHTTP)
		r.Post("/forgot-password", forgotpassword.New(log, d.Auth).ServeHTTP)
		r.Post("/reset-password", resetpassword.New(log, d.Auth).ServeHTTP)
	})

	r.Get("/api/waiting-list-mode", mode.New(d.Settings).ServeHTTP)
	r.With(limited).Post("/api/waiting-list", join.New(log, d.WaitingList).ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(adminOnly)
		r.Get("/api/waiting-list", list.New(log, d.WaitingList).ServeHTTP)
		r.Get("/api/users", userlist.New(log, d.UserAdmin).ServeHTTP)
		r.Post("/api/users", usercreate.New(log, d.UserAdmin).ServeHTTP)
		r.Put("/api/users/{id}", userupdate.New(log, d.UserAdmin).ServeHTTP)
		r.Get("/api/admin/settings", settingsget.New(log, d.Settings).ServeHTTP)
		r.Put("/api/admin/settings", settingsupdate.New(log, d.Settings).ServeHTTP)
	})

	r.Route("/api/stripe", func(r chi.Router) {
		r.Post("/create-checkout", checkout.New(log, d.Checkout).ServeHTTP)
		r.Post("/webhook", webhook.New(log, d.Provider, d.Reconciler).ServeHTTP)
	})

	r.Get("/health", health.New(log, d.HealthChecks).ServeHTTP)
	r.Handle("/metrics", obs.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
