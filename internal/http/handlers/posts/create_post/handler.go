package create_post

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"secretboard/internal/domain/models"
	"secretboard/internal/http/httputils"
	"secretboard/internal/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog"
)

// Худший случай: 4 байта UTF-8 на символ, каждый байт после URL-кодирования - %XX.
// Плюс запас на токен и имена полей.
const maxBodyBytes = models.MaxContentLength*4*3 + 1<<10

var contentRules = fmt.Sprintf("notblank,max=%d", models.MaxContentLength)

type ServiceBoard interface {
	Create(ctx context.Context, content, userName, trackingID string) (models.Post, error)
}

type TokenConsumer interface {
	VerifyAndConsume(ctx context.Context, userName, supplied string) (bool, error)
}

type postForm struct {
	Content      string
	OneTimeToken string `validate:"required,hexadecimal"`
}

// HandlerCreatePost принимает форму content=...&oneTimeToken=...
// Токен погашается только после успешной проверки формы.
func HandlerCreatePost(svc ServiceBoard, tokens TokenConsumer, log zerolog.Logger) http.HandlerFunc {
	validate := validator.New()
	validate.RegisterValidation("notblank", validators.NotBlank)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		user := httputils.UserFromContext(ctx)

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			httputils.WriteTextError(w, http.StatusBadRequest, "invalid form")
			return
		}

		form := postForm{
			Content:      r.PostForm.Get("content"),
			OneTimeToken: r.PostForm.Get("oneTimeToken"),
		}
		err := validate.Var(form.Content, contentRules)
		if err == nil {
			err = validate.Struct(form)
		}
		if err != nil {
			log.Warn().Err(err).Str("user", user).Msg("invalid post form")
			httputils.WriteTextError(w, http.StatusBadRequest, models.ErrInvalidData.Error())
			return
		}

		ok, err := tokens.VerifyAndConsume(ctx, user, form.OneTimeToken)
		if err != nil {
			log.Error().Err(err).Str("user", user).Msg("failed to verify one-time token")
			httputils.WriteTextError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if !ok {
			metrics.OneTimeTokens.WithLabelValues("rejected").Inc()
			log.Warn().Str("user", user).Msg("one-time token mismatch")
			httputils.WriteTextError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
			return
		}
		metrics.OneTimeTokens.WithLabelValues("accepted").Inc()

		if _, err := svc.Create(ctx, form.Content, user, httputils.TrackingIDFromContext(ctx)); err != nil {
			if errors.Is(err, models.ErrInvalidData) {
				httputils.WriteTextError(w, http.StatusBadRequest, models.ErrInvalidData.Error())
				return
			}
			log.Error().Err(err).Str("user", user).Msg("failed to create post")
			httputils.WriteTextError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		httputils.RedirectToPosts(w)
	}
}
