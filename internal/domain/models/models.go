package models

import (
	"errors"
	"time"
)

type (
	Post struct {
		ID             int64  // Уникальный идентификатор
		Content        string // Текст сообщения в исходном виде, экранируется только при отрисовке
		PostedBy       string // Имя пользователя из Basic-аутентификации
		TrackingCookie string // tracking_id автора на момент публикации
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}
)

// MaxContentLength - предел длины сообщения в символах (рунах)
const MaxContentLength = 10000

var (
	ErrInvalidData = errors.New("invalid input data")
	ErrUnfound     = errors.New("unfound data")
)
