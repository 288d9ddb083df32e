package list_posts

import (
	"context"
	"net/http"

	"secretboard/internal/domain/models"
	"secretboard/internal/http/httputils"
	"secretboard/internal/http/render"
	"secretboard/internal/metrics"

	"github.com/rs/zerolog"
)

type ServiceBoard interface {
	List(ctx context.Context) ([]models.Post, error)
}

type TokenIssuer interface {
	Issue(ctx context.Context, userName string) (string, error)
}

type PageRenderer interface {
	Render(w http.ResponseWriter, p render.Page) error
}

// HandlerListPosts показывает все сообщения и выдаёт новый одноразовый токен для формы
func HandlerListPosts(svc ServiceBoard, tokens TokenIssuer, renderer PageRenderer, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := httputils.UserFromContext(ctx)

		posts, err := svc.List(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to list posts")
			httputils.WriteTextError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		token, err := tokens.Issue(ctx, user)
		if err != nil {
			log.Error().Err(err).Str("user", user).Msg("failed to issue one-time token")
			httputils.WriteTextError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		metrics.OneTimeTokens.WithLabelValues("issued").Inc()

		if err := renderer.Render(w, render.Page{Posts: posts, User: user, OneTimeToken: token}); err != nil {
			log.Error().Err(err).Msg("failed to render posts page")
			httputils.WriteTextError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		log.Info().
			Str("user", user).
			Str("tracking_id", httputils.TrackingIDFromContext(ctx)).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("posts viewed")
	}
}
