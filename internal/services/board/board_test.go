package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"secretboard/internal/domain/models"
	"secretboard/internal/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// passThroughTx выполняет fn без настоящей транзакции
func passThroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestBoard_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockPostStorage(ctrl)
	service := NewBoard(mockStorage, zerolog.Nop())
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	tests := []struct {
		name        string
		content     string
		mockSetup   func()
		want        models.Post
		wantErr     bool
		expectedErr error
	}{
		{
			name:    "Успешное создание сообщения",
			content: "hello",
			mockSetup: func() {
				mockStorage.EXPECT().
					PostCreate(gomock.Any(), models.Post{
						Content:        "hello",
						PostedBy:       "alice",
						TrackingCookie: "1_abc",
						CreatedAt:      fixed,
						UpdatedAt:      fixed,
					}).
					DoAndReturn(func(ctx context.Context, p models.Post) (models.Post, error) {
						p.ID = 7
						return p, nil
					})
			},
			want: models.Post{
				ID:             7,
				Content:        "hello",
				PostedBy:       "alice",
				TrackingCookie: "1_abc",
				CreatedAt:      fixed,
				UpdatedAt:      fixed,
			},
		},
		{
			name:    "Пустой текст",
			content: "   ",
			mockSetup: func() {
				// Нет вызовов к хранилищу
			},
			wantErr:     true,
			expectedErr: models.ErrInvalidData,
		},
		{
			name:    "Ошибка хранилища",
			content: "hello",
			mockSetup: func() {
				mockStorage.EXPECT().
					PostCreate(gomock.Any(), gomock.Any()).
					Return(models.Post{}, errors.New("disk full"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			got, err := service.Create(context.Background(), tt.content, "alice", "1_abc")

			if tt.wantErr {
				require.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoard_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockPostStorage(ctrl)
	service := NewBoard(mockStorage, zerolog.Nop())

	tests := []struct {
		name        string
		user        string
		mockSetup   func()
		wantDeleted bool
		wantErr     bool
		expectedErr error
	}{
		{
			name: "Автор удаляет своё сообщение",
			user: "alice",
			mockSetup: func() {
				mockStorage.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(passThroughTx)
				mockStorage.EXPECT().PostGetByID(gomock.Any(), int64(1)).
					Return(models.Post{ID: 1, PostedBy: "alice"}, nil)
				mockStorage.EXPECT().PostDelete(gomock.Any(), int64(1)).Return(nil)
			},
			wantDeleted: true,
		},
		{
			name: "Администратор удаляет чужое сообщение",
			user: "admin",
			mockSetup: func() {
				mockStorage.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(passThroughTx)
				mockStorage.EXPECT().PostGetByID(gomock.Any(), int64(1)).
					Return(models.Post{ID: 1, PostedBy: "alice"}, nil)
				mockStorage.EXPECT().PostDelete(gomock.Any(), int64(1)).Return(nil)
			},
			wantDeleted: true,
		},
		{
			name: "Чужой пользователь - тихий отказ",
			user: "bob",
			mockSetup: func() {
				mockStorage.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(passThroughTx)
				mockStorage.EXPECT().PostGetByID(gomock.Any(), int64(1)).
					Return(models.Post{ID: 1, PostedBy: "alice"}, nil)
				// PostDelete не вызывается
			},
			wantDeleted: false,
		},
		{
			name: "Сообщение не найдено",
			user: "alice",
			mockSetup: func() {
				mockStorage.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(passThroughTx)
				mockStorage.EXPECT().PostGetByID(gomock.Any(), int64(1)).
					Return(models.Post{}, models.ErrUnfound)
			},
			wantErr:     true,
			expectedErr: models.ErrUnfound,
		},
		{
			name: "Ошибка при удалении",
			user: "alice",
			mockSetup: func() {
				mockStorage.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(passThroughTx)
				mockStorage.EXPECT().PostGetByID(gomock.Any(), int64(1)).
					Return(models.Post{ID: 1, PostedBy: "alice"}, nil)
				mockStorage.EXPECT().PostDelete(gomock.Any(), int64(1)).Return(errors.New("locked"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()

			deleted, err := service.Delete(context.Background(), tt.user, 1)

			if tt.wantErr {
				require.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				assert.False(t, deleted)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDeleted, deleted)
		})
	}
}

func TestBoard_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockPostStorage(ctrl)
	service := NewBoard(mockStorage, zerolog.Nop())

	t.Run("Пустое хранилище", func(t *testing.T) {
		mockStorage.EXPECT().PostListDesc(gomock.Any()).Return(nil, nil)

		posts, err := service.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})

	t.Run("Список сообщений", func(t *testing.T) {
		want := []models.Post{{ID: 2}, {ID: 1}}
		mockStorage.EXPECT().PostListDesc(gomock.Any()).Return(want, nil)

		posts, err := service.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, posts)
	})

	t.Run("Ошибка хранилища", func(t *testing.T) {
		mockStorage.EXPECT().PostListDesc(gomock.Any()).Return(nil, errors.New("timeout"))

		_, err := service.List(context.Background())
		require.Error(t, err)
	})
}

func TestBoard_Ping(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := mocks.NewMockPostStorage(ctrl)
	service := NewBoard(mockStorage, zerolog.Nop())

	mockStorage.EXPECT().Ping(gomock.Any()).Return(nil)
	assert.NoError(t, service.Ping(context.Background()))

	mockStorage.EXPECT().Ping(gomock.Any()).Return(errors.New("down"))
	assert.Error(t, service.Ping(context.Background()))
}
