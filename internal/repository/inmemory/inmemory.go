package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"secretboard/internal/domain/models"
)

const initLastID = 0

type InmemoryStorage struct {
	mu     sync.RWMutex
	txMu   sync.Mutex // сериализует WithinTx
	data   map[int64]models.Post
	lastID int64
}

func NewStorage() *InmemoryStorage {
	return &InmemoryStorage{
		data:   make(map[int64]models.Post),
		lastID: initLastID,
	}
}

func (m *InmemoryStorage) PostCreate(ctx context.Context, post models.Post) (models.Post, error) {
	if err := ctx.Err(); err != nil {
		return models.Post{}, err
	}

	if post.Content == "" {
		return models.Post{}, models.ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	post.ID = m.lastID
	m.data[post.ID] = post
	return post, nil
}

// PostRestore вставляет запись с уже известным ID (загрузка из файла)
func (m *InmemoryStorage) PostRestore(ctx context.Context, post models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if post.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", models.ErrInvalidData)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[post.ID] = post
	if post.ID > m.lastID {
		m.lastID = post.ID
	}
	return nil
}

func (m *InmemoryStorage) PostGetByID(ctx context.Context, id int64) (models.Post, error) {
	if err := ctx.Err(); err != nil {
		return models.Post{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	post, exists := m.data[id]
	if !exists {
		return models.Post{}, models.ErrUnfound
	}
	return post, nil
}

func (m *InmemoryStorage) PostListDesc(ctx context.Context) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	posts := make([]models.Post, 0, len(m.data))
	for _, post := range m.data {
		posts = append(posts, post)
	}
	m.mu.RUnlock()

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID > posts[j].ID
	})

	return posts, nil
}

func (m *InmemoryStorage) PostDelete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[id]; !exists {
		return models.ErrUnfound
	}
	delete(m.data, id)
	return nil
}

func (m *InmemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

// WithinTx не даёт откатить изменения, только исключает чередование
// двух транзакций между собой.
func (m *InmemoryStorage) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx)
}

func (m *InmemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[int64]models.Post)
	m.lastID = initLastID
	return nil
}
