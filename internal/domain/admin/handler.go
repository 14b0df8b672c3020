package admin

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coachhub/coachhub-api/internal/domain/navigation"
	"github.com/coachhub/coachhub-api/internal/domain/rbac"
	"github.com/coachhub/coachhub-api/internal/middleware"
	"github.com/coachhub/coachhub-api/internal/pkg/errorhandler"
	"github.com/coachhub/coachhub-api/internal/pkg/jwt"
	"github.com/coachhub/coachhub-api/internal/pkg/metrics"
	"github.com/coachhub/coachhub-api/internal/pkg/response"
	"github.com/coachhub/coachhub-api/internal/pkg/validator"
)

// Handler handles admin HTTP requests
type Handler struct {
	service      *Service
	jwtSvc       *jwt.Service
	destinations []navigation.Destination
	metrics      *metrics.Metrics
}

// NewHandler creates admin handler. destinations is the navigation table
// returned, filtered per role, on login and /auth/me. m may be nil.
func NewHandler(service *Service, jwtSvc *jwt.Service, destinations []navigation.Destination, m *metrics.Metrics) *Handler {
	return &Handler{
		service:      service,
		jwtSvc:       jwtSvc,
		destinations: destinations,
		metrics:      m,
	}
}

// --- Authentication ---

// Login handles POST /admin/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	admin, err := h.service.Login(r.Context(), req.Email, req.Password, clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, "Invalid email or password")
		case errors.Is(err, ErrAdminInactive):
			response.Forbidden(w, "Account is inactive")
		default:
			errorhandler.Internal(r.Context(), w, "admin login", err)
		}
		return
	}

	nav, err := navigation.Filter(admin.Role, h.destinations)
	if err != nil {
		// The stored role is not one the matrix knows; no session is issued.
		errorhandler.HandleError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", "Account role is not recognised", err)
		return
	}

	token, _, expiresAt, err := h.jwtSvc.GenerateAccessToken(admin.ID, admin.Email, string(admin.Role))
	if err != nil {
		errorhandler.Internal(r.Context(), w, "issue admin token", err)
		return
	}

	response.OK(w, &LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		Admin:       AdminResponseFromEntity(admin),
		Navigation:  nav,
	})
}

// Logout handles POST /admin/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	revoked, err := h.service.Logout(ctx, middleware.GetAdminID(ctx), middleware.GetTokenID(ctx), h.jwtSvc.GetAccessTTL())
	if err != nil {
		errorhandler.Internal(ctx, w, "admin logout", err)
		return
	}
	if revoked {
		h.metrics.RecordRevocation()
	}
	response.NoContent(w)
}

// Me handles GET /admin/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	admin, err := h.service.GetAdminByID(ctx, middleware.GetAdminID(ctx))
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			response.NotFound(w, "Admin not found")
			return
		}
		errorhandler.Internal(ctx, w, "get current admin", err)
		return
	}

	// Navigation follows the session role, which is what every gate checks.
	nav, err := navigation.Filter(middleware.GetRole(ctx), h.destinations)
	if err != nil {
		response.SessionInvalid(w)
		return
	}

	response.OK(w, &MeResponse{
		Admin:      AdminResponseFromEntity(admin),
		Navigation: nav,
	})
}

// --- Admin Management ---

// ListAdmins handles GET /admin/admins
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		errorhandler.Internal(r.Context(), w, "list admins", err)
		return
	}

	items := make([]*AdminResponse, len(admins))
	for i, a := range admins {
		items[i] = AdminResponseFromEntity(a)
	}

	response.OK(w, items)
}

// CreateAdmin handles POST /admin/admins
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	ctx := r.Context()
	admin, err := h.service.CreateAdmin(ctx, middleware.GetAdminID(ctx), middleware.GetRole(ctx), &req)
	if err != nil {
		h.writeManageError(w, r, "create admin", err)
		return
	}

	response.Created(w, AdminResponseFromEntity(admin))
}

// UpdateAdmin handles PATCH /admin/admins/{id}
func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid admin ID")
		return
	}

	var req UpdateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	ctx := r.Context()
	admin, err := h.service.UpdateAdmin(ctx, middleware.GetAdminID(ctx), middleware.GetRole(ctx), targetID, &req)
	if err != nil {
		h.writeManageError(w, r, "update admin", err)
		return
	}

	response.OK(w, AdminResponseFromEntity(admin))
}

func (h *Handler) writeManageError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	switch {
	case errors.Is(err, ErrAdminNotFound):
		response.NotFound(w, "Admin not found")
	case errors.Is(err, ErrEmailTaken):
		response.Conflict(w, "Email already in use")
	case errors.Is(err, ErrCannotManageRole):
		response.Forbidden(w, "Cannot manage admin with equal or higher role")
	case errors.Is(err, ErrCannotModifySelf):
		response.Forbidden(w, "Cannot change your own role or status")
	case errors.Is(err, rbac.ErrUnknownRole):
		response.BadRequest(w, "Unknown role")
	default:
		errorhandler.Internal(r.Context(), w, operation, err)
	}
}

// --- Permissions ---

// Permissions handles GET /admin/permissions
func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	resp, err := PermissionMatrixFrom(rbac.DefaultMatrix())
	if err != nil {
		errorhandler.Internal(r.Context(), w, "render permission matrix", err)
		return
	}
	response.OK(w, resp)
}

// --- Audit Logs ---

// maxAuditPage bounds page so (page-1)*limit cannot overflow
const maxAuditPage = 100000

// AuditLogs handles GET /admin/audit/logs
func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p > maxAuditPage {
			response.BadRequest(w, "Invalid page")
			return
		}
		if p > 0 {
			page = p
		}
	}
	limit := 50
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	filter := AuditFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if v := q.Get("admin_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(w, "Invalid admin_id")
			return
		}
		filter.AdminID = &id
	}
	if action := q.Get("action"); action != "" {
		filter.Action = &action
	}
	if entityType := q.Get("entity_type"); entityType != "" {
		filter.EntityType = &entityType
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(w, "Invalid from date")
			return
		}
		filter.FromDate = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(w, "Invalid to date")
			return
		}
		filter.ToDate = &t
	}

	logs, total, err := h.service.ListAuditLogs(r.Context(), filter)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "list audit logs", err)
		return
	}

	items := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		items[i] = AuditLogResponseFromEntity(l)
	}

	response.WithMeta(w, items, response.NewMeta(total, page, limit))
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
