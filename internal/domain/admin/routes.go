package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coachhub/coachhub-api/internal/domain/rbac"
	"github.com/coachhub/coachhub-api/internal/middleware"
)

// Routes returns admin router. authMW authenticates the session; every
// section below it is gated on a single permission.
func (h *Handler) Routes(authMW func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	m := h.metrics

	// Auth routes (no auth required)
	r.Post("/auth/login", h.Login)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMW)

		r.Get("/auth/me", h.Me)
		r.Post("/auth/logout", h.Logout)

		r.Route("/admins", func(r chi.Router) {
			r.Use(middleware.RequirePermission(rbac.PermManageUsers, m))
			r.Get("/", h.ListAdmins)
			r.Post("/", h.CreateAdmin)
			r.Patch("/{id}", h.UpdateAdmin)
		})

		r.Route("/audit", func(r chi.Router) {
			r.Use(middleware.RequirePermission(rbac.PermViewAuditLogs, m))
			r.Get("/logs", h.AuditLogs)
		})

		r.With(middleware.RequirePermission(rbac.PermManageSecurity, m)).
			Get("/permissions", h.Permissions)
	})

	return r
}
