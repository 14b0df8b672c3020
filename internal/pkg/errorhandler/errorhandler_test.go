package errorhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachhub/coachhub-api/internal/pkg/logger"
	"github.com/coachhub/coachhub-api/internal/pkg/response"
)

func TestInternal(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).With().Str("request_id", "req-1").Logger()
	ctx := logger.WithContext(context.Background(), &l)

	rr := httptest.NewRecorder()
	Internal(ctx, rr, "admin.list", errors.New("connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"operation":"admin.list"`)
	assert.Contains(t, buf.String(), "connection refused")
}

func TestHandleError(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleError(context.Background(), rr, http.StatusBadGateway, "UPSTREAM", "Upstream failed", nil)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"UPSTREAM"`)
}
