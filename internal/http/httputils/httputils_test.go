package httputils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"secretboard/internal/http/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSONError(rec, http.StatusForbidden, "admin only")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, MIMEApplicationJSON, rec.Header().Get(HeaderContentType))

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, dto.ErrorResponse{Error: "admin only"}, body)
}

func TestRedirectToPosts(t *testing.T) {
	rec := httptest.NewRecorder()

	RedirectToPosts(rec)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, PathPosts, rec.Header().Get(HeaderLocation))
}
