package tracking

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	CookieName = "tracking_id"
	Lifetime   = 24 * time.Hour

	separator = "_"
)

// Result - итог проверки tracking_id для одного запроса.
type Result struct {
	Value     string
	ShouldSet bool      // куку нужно (пере)записать
	Expires   time.Time // заполнено только при выдаче нового значения
}

type CookieOptions struct {
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

type Manager struct {
	signer *Signer
	opts   CookieOptions
	now    func() time.Time
	random io.Reader
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithRandom(r io.Reader) Option {
	return func(m *Manager) { m.random = r }
}

func NewManager(signer *Signer, opts CookieOptions, options ...Option) *Manager {
	m := &Manager{
		signer: signer,
		opts:   opts,
		now:    time.Now,
		random: rand.Reader,
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// Ensure возвращает существующий tracking_id, если он подписан для userName,
// иначе выпускает новый. Ошибка возможна только при отказе источника случайности.
func (m *Manager) Ensure(existing, userName string) (Result, error) {
	if m.IsValid(existing, userName) {
		return Result{Value: existing}, nil
	}

	originalID, err := m.newOriginalID()
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate tracking id: %w", err)
	}

	return Result{
		Value:     originalID + separator + m.signer.Sign(originalID, userName),
		ShouldSet: true,
		Expires:   m.now().Add(Lifetime),
	}, nil
}

// IsValid проверяет значение относительно имени пользователя текущего запроса.
// Любая некорректная форма значения просто даёт false.
func (m *Manager) IsValid(value, userName string) bool {
	if value == "" {
		return false
	}

	parts := strings.Split(value, separator)
	if len(parts) != 2 {
		return false
	}

	return m.signer.Verify(parts[0], userName, parts[1])
}

// Cookie строит куку для результата, требующего записи.
func (m *Manager) Cookie(res Result) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    res.Value,
		Path:     "/",
		Expires:  res.Expires,
		Secure:   m.opts.Secure,
		HttpOnly: m.opts.HttpOnly,
		SameSite: m.opts.SameSite,
	}
}

// OriginalID отрезает подпись и возвращает числовую часть идентификатора.
func OriginalID(value string) string {
	id, _, _ := strings.Cut(value, separator)
	return id
}

func (m *Manager) newOriginalID() (string, error) {
	var b [8]byte
	if _, err := io.ReadFull(m.random, b[:]); err != nil {
		return "", err
	}
	return strconv.FormatUint(binary.BigEndian.Uint64(b[:]), 10), nil
}
