package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"secretboard/internal/domain/models"
	"secretboard/internal/services/authz"

	"github.com/rs/zerolog"
)

/*
PostStorage - интерфейс хранилища сообщений
*/

//go:generate mockgen -source=board.go -destination=../../mocks/mock_post_storage.go -package=mocks
type PostStorage interface {
	PostCreate(ctx context.Context, post models.Post) (models.Post, error)
	PostGetByID(ctx context.Context, id int64) (models.Post, error)
	PostListDesc(ctx context.Context) ([]models.Post, error)
	PostDelete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error

	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Board реализует бизнес-логику доски сообщений
type Board struct {
	storage PostStorage
	log     zerolog.Logger
	now     func() time.Time
}

func NewBoard(storage PostStorage, log zerolog.Logger) *Board {
	return &Board{
		storage: storage,
		log:     log.With().Str("component", "board").Logger(),
		now:     time.Now,
	}
}

// List возвращает все сообщения, новые первыми
func (b *Board) List(ctx context.Context) ([]models.Post, error) {
	posts, err := b.storage.PostListDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// Create сохраняет новое сообщение от имени userName
func (b *Board) Create(ctx context.Context, content, userName, trackingID string) (models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return models.Post{}, fmt.Errorf("%w: empty content", models.ErrInvalidData)
	}

	now := b.now().UTC()
	post, err := b.storage.PostCreate(ctx, models.Post{
		Content:        content,
		PostedBy:       userName,
		TrackingCookie: trackingID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return models.Post{}, fmt.Errorf("failed to create post: %w", err)
	}

	b.log.Info().
		Int64("post_id", post.ID).
		Str("user", userName).
		Str("tracking_id", trackingID).
		Msg("post created")

	return post, nil
}

// Delete удаляет сообщение, если userName - автор или администратор.
// Отсутствие прав не является ошибкой: возвращается false, запись не трогается.
func (b *Board) Delete(ctx context.Context, userName string, id int64) (bool, error) {
	var deleted bool

	err := b.storage.WithinTx(ctx, func(ctx context.Context) error {
		post, err := b.storage.PostGetByID(ctx, id)
		if err != nil {
			return err
		}

		if !authz.CanDelete(userName, post.PostedBy) {
			b.log.Warn().
				Int64("post_id", id).
				Str("user", userName).
				Str("posted_by", post.PostedBy).
				Msg("delete denied")
			return nil
		}

		if err := b.storage.PostDelete(ctx, id); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrUnfound) {
			return false, fmt.Errorf("%w: post %d", models.ErrUnfound, id)
		}
		return false, fmt.Errorf("failed to delete post: %w", err)
	}

	if deleted {
		b.log.Info().Int64("post_id", id).Str("user", userName).Msg("post deleted")
	}
	return deleted, nil
}

// Ping проверяет соединение с хранилищем
func (b *Board) Ping(ctx context.Context) error {
	if err := b.storage.Ping(ctx); err != nil {
		return fmt.Errorf("storage ping failed: %w", err)
	}
	return nil
}
