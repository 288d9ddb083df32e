package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"secretboard/internal/http/httputils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRequestID(t *testing.T) {
	var seen string
	h := MiddlewareRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputils.RequestIDFromContext(r.Context())
	}))

	t.Run("новый идентификатор", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))

		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
		assert.Equal(t, seen, rec.Header().Get(httputils.HeaderRequestID))
	})

	t.Run("идентификатор клиента сохраняется", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		req.Header.Set(httputils.HeaderRequestID, id)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, id, seen)
	})

	t.Run("мусор заменяется", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		req.Header.Set(httputils.HeaderRequestID, "<script>")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.NotEqual(t, "<script>", seen)
	})
}

func TestMiddlewareLogging(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		level   string
	}{
		{
			name:    "успешный запрос",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) },
			status:  http.StatusOK,
			level:   `"level":"info"`,
		},
		{
			name: "ошибка клиента",
			handler: func(w http.ResponseWriter, r *http.Request) {
				httputils.WriteTextError(w, http.StatusBadRequest, "bad")
			},
			status: http.StatusBadRequest,
			level:  `"level":"warn"`,
		},
		{
			name:    "паника",
			handler: func(w http.ResponseWriter, r *http.Request) { panic("boom") },
			status:  http.StatusInternalServerError,
			level:   `"level":"error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := zerolog.New(&buf)
			rec := httptest.NewRecorder()

			MiddlewareLogging(log)(tt.handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), `"path":"/posts"`)
		})
	}
}

func TestMiddlewareLogging_Duration(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	MiddlewareLogging(log)(slow).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts", nil))

	var entry struct {
		DurationMS float64 `json:"duration_ms"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.GreaterOrEqual(t, entry.DurationMS, 20.0)
	assert.Less(t, entry.DurationMS, 10000.0)
}
