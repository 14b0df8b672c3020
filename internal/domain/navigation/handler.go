package navigation

import (
	"net/http"

	"github.com/coachhub/coachhub-api/internal/middleware"
	"github.com/coachhub/coachhub-api/internal/pkg/logger"
	"github.com/coachhub/coachhub-api/internal/pkg/response"
)

// Handler serves the navigation visible to the signed-in admin
type Handler struct {
	destinations []Destination
}

// NewHandler creates navigation handler
func NewHandler(destinations []Destination) *Handler {
	return &Handler{destinations: destinations}
}

// List handles GET /admin/navigation. Destinations the session role may not
// open are left out entirely rather than marked disabled.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetRole(r.Context())

	visible, err := Filter(role, h.destinations)
	if err != nil {
		logger.LogWarn(r.Context(), "Navigation filter rejected session role",
			"role", string(role),
			"error", err.Error(),
		)
		response.SessionInvalid(w)
		return
	}

	response.OK(w, visible)
}
