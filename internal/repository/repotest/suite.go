// Package repotest - общий набор проверок для реализаций хранилища сообщений.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"secretboard/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Storage interface {
	PostCreate(ctx context.Context, post models.Post) (models.Post, error)
	PostGetByID(ctx context.Context, id int64) (models.Post, error)
	PostListDesc(ctx context.Context) ([]models.Post, error)
	PostDelete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RunPostStorage прогоняет контракт хранилища; newStorage должен
// возвращать пустое хранилище.
func RunPostStorage(t *testing.T, newStorage func(t *testing.T) Storage) {
	t.Run("Создание и чтение", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()
		now := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

		created, err := s.PostCreate(ctx, models.Post{
			Content:        "<b>hi</b>",
			PostedBy:       "alice",
			TrackingCookie: "1_sig",
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		require.NoError(t, err)
		assert.Positive(t, created.ID)

		got, err := s.PostGetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "<b>hi</b>", got.Content)
		assert.Equal(t, "alice", got.PostedBy)
		assert.Equal(t, "1_sig", got.TrackingCookie)
		assert.True(t, now.Equal(got.CreatedAt), "created_at: got %v", got.CreatedAt)
		assert.True(t, now.Equal(got.UpdatedAt), "updated_at: got %v", got.UpdatedAt)
	})

	t.Run("Пустой текст отклоняется", func(t *testing.T) {
		s := newStorage(t)
		_, err := s.PostCreate(context.Background(), models.Post{PostedBy: "alice"})
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidData)
	})

	t.Run("Список по убыванию ID", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()

		for _, c := range []string{"first", "second", "third"} {
			_, err := s.PostCreate(ctx, models.Post{Content: c, PostedBy: "bob", CreatedAt: time.Now(), UpdatedAt: time.Now()})
			require.NoError(t, err)
		}

		posts, err := s.PostListDesc(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, "third", posts[0].Content)
		assert.Equal(t, "first", posts[2].Content)
		assert.Greater(t, posts[0].ID, posts[1].ID)
		assert.Greater(t, posts[1].ID, posts[2].ID)
	})

	t.Run("Пустое хранилище", func(t *testing.T) {
		s := newStorage(t)
		posts, err := s.PostListDesc(context.Background())
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("Удаление", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()

		p, err := s.PostCreate(ctx, models.Post{Content: "bye", PostedBy: "bob", CreatedAt: time.Now(), UpdatedAt: time.Now()})
		require.NoError(t, err)

		require.NoError(t, s.PostDelete(ctx, p.ID))

		_, err = s.PostGetByID(ctx, p.ID)
		assert.ErrorIs(t, err, models.ErrUnfound)

		err = s.PostDelete(ctx, p.ID)
		assert.ErrorIs(t, err, models.ErrUnfound)
	})

	t.Run("Несуществующий ID", func(t *testing.T) {
		s := newStorage(t)
		_, err := s.PostGetByID(context.Background(), 999)
		assert.ErrorIs(t, err, models.ErrUnfound)
	})

	t.Run("Транзакция", func(t *testing.T) {
		s := newStorage(t)
		ctx := context.Background()

		p, err := s.PostCreate(ctx, models.Post{Content: "tx", PostedBy: "bob", CreatedAt: time.Now(), UpdatedAt: time.Now()})
		require.NoError(t, err)

		err = s.WithinTx(ctx, func(ctx context.Context) error {
			got, err := s.PostGetByID(ctx, p.ID)
			if err != nil {
				return err
			}
			return s.PostDelete(ctx, got.ID)
		})
		require.NoError(t, err)

		_, err = s.PostGetByID(ctx, p.ID)
		assert.ErrorIs(t, err, models.ErrUnfound)

		errBoom := errors.New("boom")
		err = s.WithinTx(ctx, func(ctx context.Context) error { return errBoom })
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStorage(t)
		assert.NoError(t, s.Ping(context.Background()))
	})
}

// RunRollback проверяет откат транзакции для хранилищ, которые его поддерживают.
func RunRollback(t *testing.T, newStorage func(t *testing.T) Storage) {
	s := newStorage(t)
	ctx := context.Background()

	p, err := s.PostCreate(ctx, models.Post{Content: "keep", PostedBy: "bob", CreatedAt: time.Now(), UpdatedAt: time.Now()})
	require.NoError(t, err)

	errAbort := errors.New("abort")
	err = s.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.PostDelete(ctx, p.ID); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	got, err := s.PostGetByID(ctx, p.ID)
	require.NoError(t, err, "delete must be rolled back")
	assert.Equal(t, "keep", got.Content)
}
