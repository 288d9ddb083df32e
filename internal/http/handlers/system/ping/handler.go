package ping

import (
	"context"
	"net/http"

	"secretboard/internal/http/httputils"

	"github.com/rs/zerolog"
)

type ServicePinger interface {
	Ping(ctx context.Context) error
}

func HandlerPing(svc ServicePinger, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ping(r.Context()); err != nil {
			log.Error().Err(err).Msg("ping failed")
			httputils.WriteTextError(w, http.StatusInternalServerError, "storage unavailable")
			return
		}
		w.Header().Set(httputils.HeaderContentType, httputils.MIMETextPlain+"; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
