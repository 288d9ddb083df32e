package delete_post

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"secretboard/internal/domain/models"
	"secretboard/internal/http/httputils"
	"secretboard/internal/metrics"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 4 << 10

type ServiceBoard interface {
	Delete(ctx context.Context, userName string, id int64) (bool, error)
}

// HandlerDeletePost удаляет сообщение по id=... из формы.
// Нет прав или нет сообщения - всё равно 303 на список.
func HandlerDeletePost(svc ServiceBoard, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputils.WriteTextError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
			return
		}

		ctx := r.Context()
		user := httputils.UserFromContext(ctx)

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			httputils.WriteTextError(w, http.StatusBadRequest, "invalid form")
			return
		}

		id, err := strconv.ParseInt(r.PostForm.Get("id"), 10, 64)
		if err != nil {
			httputils.WriteTextError(w, http.StatusBadRequest, models.ErrInvalidData.Error())
			return
		}

		deleted, err := svc.Delete(ctx, user, id)
		switch {
		case errors.Is(err, models.ErrUnfound):
			metrics.PostsDeleted.WithLabelValues("missing").Inc()
			log.Info().Int64("post_id", id).Str("user", user).Msg("delete of missing post ignored")
		case err != nil:
			log.Error().Err(err).Int64("post_id", id).Msg("failed to delete post")
			httputils.WriteTextError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		case deleted:
			metrics.PostsDeleted.WithLabelValues("deleted").Inc()
		default:
			metrics.PostsDeleted.WithLabelValues("denied").Inc()
		}

		httputils.RedirectToPosts(w)
	}
}
