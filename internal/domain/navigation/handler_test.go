package navigation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachhub/coachhub-api/internal/domain/rbac"
)

func serveList(t *testing.T, h *Handler, role rbac.Role) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/navigation", nil)
	if role != "" {
		req = req.WithContext(rbac.WithRole(req.Context(), role))
	}
	rr := httptest.NewRecorder()
	h.List(rr, req)
	return rr
}

func TestHandlerListFiltersBySessionRole(t *testing.T) {
	h := NewHandler(DefaultDestinations())

	rr := serveList(t, h, rbac.RoleComplianceAdmin)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []Destination `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"finance", "audit", "exports"}, keys(body.Data))
}

func TestHandlerListRejectsUnknownRole(t *testing.T) {
	h := NewHandler(DefaultDestinations())

	rr := serveList(t, h, rbac.Role("janitor"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = serveList(t, h, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
