package auth

import (
	"net/http"

	"secretboard/internal/http/httputils"

	"github.com/rs/zerolog"
)

const Realm = "Enter username and password."

type Authenticator interface {
	Authenticate(name, password string) bool
}

// Challenge отвечает 401 с приглашением ввести логин и пароль.
// Так же работает выход: браузер забывает сохранённые учётные данные.
func Challenge(w http.ResponseWriter) {
	w.Header().Set(httputils.HeaderWWWAuthenticate, `Basic realm="`+Realm+`"`)
	httputils.WriteTextError(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
}

// MiddlewareAuth кладёт имя пользователя из Basic-аутентификации в контекст запроса
func MiddlewareAuth(auth Authenticator, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, password, ok := r.BasicAuth()
			if !ok || !auth.Authenticate(name, password) {
				if ok {
					log.Warn().Str("user", name).Str("ip", r.RemoteAddr).Msg("authentication failed")
				}
				Challenge(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(httputils.WithUser(r.Context(), name)))
		})
	}
}

// HandlerLogout всегда отвечает 401
func HandlerLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Challenge(w)
	}
}
