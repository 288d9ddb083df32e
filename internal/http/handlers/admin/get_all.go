package admin

import (
	"context"
	"net/http"

	"secretboard/internal/domain/models"
	"secretboard/internal/http/dto"
	"secretboard/internal/http/httputils"
	"secretboard/internal/services/authz"

	"github.com/rs/zerolog"
)

type Service interface {
	List(ctx context.Context) ([]models.Post, error)
}

// HandlerGetAll отдаёт администратору все сообщения вместе с авторами
func HandlerGetAll(svc Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := log.With().Str("handler", "HandlerGetAll").Logger()

		user := httputils.UserFromContext(ctx)
		if user != authz.AdminUser {
			log.Warn().Str("user", user).Msg("admin export denied")
			httputils.WriteJSONError(w, http.StatusForbidden, "admin only")
			return
		}

		log.Debug().Msg("fetching all posts")

		posts, err := svc.List(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to get all posts")
			httputils.WriteJSONError(w, http.StatusInternalServerError, "failed to get all posts")
			return
		}

		log.Debug().
			Int("count", len(posts)).
			Msg("successfully retrieved posts")

		httputils.WriteJSONResponse(w, http.StatusOK, dto.PostsResponseFromDomain(posts))
	}
}

// curl -v -u admin:password http://localhost:8000/admin/posts
