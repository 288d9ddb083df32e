package onetimetoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

const tokenBytes = 16

// Backend хранит не более одного токена на пользователя.
// CompareAndDelete обязан быть атомарным: проверка и удаление одной операцией.
type Backend interface {
	Put(ctx context.Context, userName, token string) error
	CompareAndDelete(ctx context.Context, userName, token string) (bool, error)
}

// Store выдаёт одноразовые токены для форм и погашает их при отправке.
type Store struct {
	backend Backend
	random  io.Reader
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		random:  rand.Reader,
	}
}

// Issue генерирует новый токен и молча заменяет предыдущий, даже непогашенный.
func (s *Store) Issue(ctx context.Context, userName string) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", fmt.Errorf("failed to generate one-time token: %w", err)
	}
	token := hex.EncodeToString(b)

	if err := s.backend.Put(ctx, userName, token); err != nil {
		return "", fmt.Errorf("failed to store one-time token: %w", err)
	}
	return token, nil
}

// VerifyAndConsume возвращает true и удаляет токен только при точном совпадении.
// При несовпадении сохранённый токен остаётся на месте.
func (s *Store) VerifyAndConsume(ctx context.Context, userName, supplied string) (bool, error) {
	if supplied == "" {
		return false, nil
	}

	ok, err := s.backend.CompareAndDelete(ctx, userName, supplied)
	if err != nil {
		return false, fmt.Errorf("failed to consume one-time token: %w", err)
	}
	return ok, nil
}
