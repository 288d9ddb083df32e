package tracking

import (
	"net/http"

	"secretboard/internal/http/httputils"
	"secretboard/internal/metrics"
	"secretboard/internal/services/tracking"

	"github.com/rs/zerolog"
)

type Manager interface {
	Ensure(existing, userName string) (tracking.Result, error)
	Cookie(res tracking.Result) *http.Cookie
}

// MiddlewareTracking проверяет tracking_id на каждом запросе и при необходимости
// выдаёт новый. Идентификатор кладётся в контекст.
func MiddlewareTracking(m Manager, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := httputils.UserFromContext(r.Context())

			var existing string
			if cookie, err := r.Cookie(tracking.CookieName); err == nil {
				existing = cookie.Value
			}

			res, err := m.Ensure(existing, user)
			if err != nil {
				log.Error().Err(err).Str("user", user).Msg("failed to ensure tracking id")
				httputils.WriteTextError(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}

			if res.ShouldSet {
				http.SetCookie(w, m.Cookie(res))
				metrics.TrackingIDsIssued.Inc()
				log.Debug().
					Str("user", user).
					Bool("had_cookie", existing != "").
					Msg("tracking id issued")
			}

			next.ServeHTTP(w, r.WithContext(httputils.WithTrackingID(r.Context(), res.Value)))
		})
	}
}
