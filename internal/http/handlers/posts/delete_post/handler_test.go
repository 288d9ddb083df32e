package delete_post

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"secretboard/internal/domain/models"
	"secretboard/internal/http/httputils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeBoard struct {
	deleted bool
	err     error
	gotID   int64
	gotUser string
}

func (f *fakeBoard) Delete(ctx context.Context, userName string, id int64) (bool, error) {
	f.gotID, f.gotUser = id, userName
	return f.deleted, f.err
}

func TestHandlerDeletePost(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		id         string
		board      *fakeBoard
		wantStatus int
		wantCalled bool
	}{
		{name: "удаление своего сообщения", method: http.MethodPost, id: "7", board: &fakeBoard{deleted: true}, wantStatus: http.StatusSeeOther, wantCalled: true},
		{name: "нет прав - тихо игнорируем", method: http.MethodPost, id: "7", board: &fakeBoard{}, wantStatus: http.StatusSeeOther, wantCalled: true},
		{name: "сообщения нет", method: http.MethodPost, id: "7", board: &fakeBoard{err: fmt.Errorf("%w: post 7", models.ErrUnfound)}, wantStatus: http.StatusSeeOther, wantCalled: true},
		{name: "ошибка хранилища", method: http.MethodPost, id: "7", board: &fakeBoard{err: errors.New("db down")}, wantStatus: http.StatusInternalServerError, wantCalled: true},
		{name: "нечисловой id", method: http.MethodPost, id: "abc", board: &fakeBoard{}, wantStatus: http.StatusBadRequest},
		{name: "пустой id", method: http.MethodPost, id: "", board: &fakeBoard{}, wantStatus: http.StatusBadRequest},
		{name: "не POST", method: http.MethodGet, id: "7", board: &fakeBoard{}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := url.Values{"id": {tt.id}}.Encode()
			req := httptest.NewRequest(tt.method, "/posts/delete", strings.NewReader(body))
			req.Header.Set(httputils.HeaderContentType, httputils.MIMEFormURLEncoded)
			req = req.WithContext(httputils.WithUser(req.Context(), "alice"))
			rec := httptest.NewRecorder()

			HandlerDeletePost(tt.board, zerolog.Nop()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, "/posts", rec.Header().Get(httputils.HeaderLocation))
			}
			if tt.wantCalled {
				assert.Equal(t, int64(7), tt.board.gotID)
				assert.Equal(t, "alice", tt.board.gotUser)
			} else {
				assert.Empty(t, tt.board.gotUser)
			}
		})
	}
}
