package logger

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"secretboard/internal/http/httputils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	size       int
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if r.statusCode == 0 {
		r.statusCode = statusCode
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.size += size
	return size, err
}

func (r *responseRecorder) status() int {
	if r.statusCode == 0 {
		return http.StatusOK
	}
	return r.statusCode
}

// MiddlewareRequestID присваивает запросу идентификатор (или берёт пришедший в X-Request-ID)
func MiddlewareRequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(httputils.HeaderRequestID)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}

			w.Header().Set(httputils.HeaderRequestID, id)
			next.ServeHTTP(w, r.WithContext(httputils.WithRequestID(r.Context(), id)))
		})
	}
}

func MiddlewareLogging(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &responseRecorder{ResponseWriter: w}
			requestID := httputils.RequestIDFromContext(r.Context())

			// Логируем начало запроса только в debug режиме
			if log.GetLevel() <= zerolog.DebugLevel {
				log.Debug().
					Str("request_id", requestID).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("ip", r.RemoteAddr).
					Msg("request started")
			}

			// Перехватываем паники, чтобы залогировать их
			defer func() {
				if err := recover(); err != nil {
					log.Error().
						Str("request_id", requestID).
						Str("panic", fmt.Sprintf("%v", err)).
						Str("stack", string(debug.Stack())).
						Msg("request panic")
					if recorder.statusCode == 0 {
						httputils.WriteTextError(recorder, http.StatusInternalServerError, "Internal Server Error")
					}
				}

				duration := time.Since(start)
				status := recorder.status()

				// Определяем тип сообщения по статусу
				var msg string
				var event *zerolog.Event
				switch {
				case status >= 500:
					msg = "server error"
					event = log.Error()
				case status >= 400:
					msg = "client error"
					event = log.Warn()
				default:
					msg = "request completed"
					event = log.Info()
				}

				event = event.
					Str("request_id", requestID).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Dur("duration_ms", duration).
					Int("bytes", recorder.size).
					Str("ip", r.RemoteAddr)

				// Добавляем предупреждение для медленных запросов
				if duration > 100*time.Millisecond {
					event = event.Bool("slow", true)
				}

				event.Msg(msg)
			}()

			next.ServeHTTP(recorder, r)
		})
	}
}
