// Package cookie управляет cookie с сессионным токеном.
package cookie

import (
	"net/http"

	"github.com/magabrotheeeer/saaskit/internal/lib/jwt"
)

// Name имя cookie с токеном.
const Name = "token"

// SetToken выставляет httpOnly cookie на время жизни сессии. secure включается в production.
func SetToken(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(jwt.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear удаляет cookie.
func Clear(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
