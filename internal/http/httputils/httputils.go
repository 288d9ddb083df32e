package httputils

import (
	"context"
	"encoding/json"
	"net/http"

	"secretboard/internal/http/dto"
)

// MIME: https://developer.mozilla.org/en-US/docs/Web/HTTP/Guides/MIME_types/Common_types

const (
	HeaderContentType     = "Content-Type"
	HeaderContentEncoding = "Content-Encoding"
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderContentLength   = "Content-Length"
	HeaderUserAgent       = "User-Agent"
	HeaderLocation        = "Location"
	HeaderRequestID       = "X-Request-ID"
	HeaderWWWAuthenticate = "WWW-Authenticate"

	MIMEApplicationJSON = "application/json"
	MIMETextHTML        = "text/html"
	MIMETextPlain       = "text/plain"
	MIMEFormURLEncoded  = "application/x-www-form-urlencoded"

	EncodingGzip = "gzip"
)

const (
	PathPosts       = "/posts"
	PathPostsDelete = "/posts/delete"
	PathLogout      = "/logout"
	PathAdminPosts  = "/admin/posts"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyTrackingID
	ctxKeyRequestID
)

func WriteTextError(w http.ResponseWriter, status int, message string) {
	w.Header().Set(HeaderContentType, MIMETextPlain+"; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(message))
}

func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set(HeaderContentType, MIMEApplicationJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{Error: message})
}

func WriteJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set(HeaderContentType, MIMEApplicationJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RedirectToPosts завершает успешную отправку формы: 303 на список сообщений
func RedirectToPosts(w http.ResponseWriter) {
	w.Header().Set(HeaderLocation, PathPosts)
	w.WriteHeader(http.StatusSeeOther)
}

func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

// UserFromContext возвращает имя пользователя; пустая строка, если аутентификации не было
func UserFromContext(ctx context.Context) string {
	user, _ := ctx.Value(ctxKeyUser).(string)
	return user
}

func WithTrackingID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyTrackingID, id)
}

func TrackingIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyTrackingID).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}
