package onetimetoken

import (
	"context"
	"sync"
)

// MemoryBackend живёт ровно столько, сколько процесс: после рестарта
// все выданные токены недействительны.
type MemoryBackend struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tokens: make(map[string]string),
	}
}

func (m *MemoryBackend) Put(ctx context.Context, userName, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.tokens[userName] = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) CompareAndDelete(ctx context.Context, userName, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tokens[userName]
	if !ok || stored != token {
		return false, nil
	}
	delete(m.tokens, userName)
	return true, nil
}

// Len - количество непогашенных токенов.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}
