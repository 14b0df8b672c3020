package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/coachhub/coachhub-api/internal/domain/rbac"
	"github.com/coachhub/coachhub-api/internal/pkg/errorhandler"
	"github.com/coachhub/coachhub-api/internal/pkg/jwt"
	"github.com/coachhub/coachhub-api/internal/pkg/logger"
	"github.com/coachhub/coachhub-api/internal/pkg/metrics"
	"github.com/coachhub/coachhub-api/internal/pkg/response"
)

type contextKey string

const (
	AdminIDKey contextKey = "admin_id"
	TokenIDKey contextKey = "token_id"
)

// RevocationChecker reports whether a session token was revoked before expiry
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Account is the stored state of the admin a session belongs to
type Account struct {
	Role   rbac.Role
	Active bool
}

// AccountLookup loads the account behind a session. It returns nil and no
// error when the account no longer exists.
type AccountLookup interface {
	SessionAccount(ctx context.Context, adminID uuid.UUID) (*Account, error)
}

// Auth returns middleware that validates the admin session token and puts
// the admin id and role in the request context. A token whose role is not
// a known rbac role is treated as a corrupted session. When accounts is set,
// a session whose admin was deleted, deactivated or moved to another role
// is rejected too, so those changes apply before the token expires.
func Auth(jwtService *jwt.Service, revocations RevocationChecker, accounts AccountLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateAccessToken(parts[1])
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					logger.LogError(r.Context(), err, "Revocation lookup failed", "token_id", claims.ID)
					response.InternalError(w)
					return
				}
				if revoked {
					response.SessionInvalid(w)
					return
				}
			}

			role, err := rbac.ParseRole(claims.Role)
			if err != nil {
				logger.LogWarn(r.Context(), "Session carries unknown role",
					"admin_id", claims.AdminID.String(),
					"role", claims.Role,
				)
				response.SessionInvalid(w)
				return
			}

			if accounts != nil {
				account, err := accounts.SessionAccount(r.Context(), claims.AdminID)
				if err != nil {
					logger.LogError(r.Context(), err, "Account lookup failed", "admin_id", claims.AdminID.String())
					response.InternalError(w)
					return
				}
				if account == nil || !account.Active || account.Role != role {
					logger.LogWarn(r.Context(), "Session no longer matches account",
						"admin_id", claims.AdminID.String(),
						"role", claims.Role,
					)
					response.SessionInvalid(w)
					return
				}
			}

			ctx := context.WithValue(r.Context(), AdminIDKey, claims.AdminID)
			ctx = context.WithValue(ctx, TokenIDKey, claims.ID)
			ctx = rbac.WithRole(ctx, role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminID extracts admin ID from context
func GetAdminID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(AdminIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetTokenID extracts the session token id from context
func GetTokenID(ctx context.Context) string {
	id, _ := ctx.Value(TokenIDKey).(string)
	return id
}

// GetRole extracts the session role from context
func GetRole(ctx context.Context) rbac.Role {
	role, _ := rbac.RoleFromContext(ctx)
	return role
}

// RequirePermission returns middleware that lets the request through only
// when the session role holds perm. Missing permissions yield 403; a role
// the matrix does not recognise yields 401 so the client signs in again. A
// route guarded by an unknown permission is a server fault and yields 500.
func RequirePermission(perm rbac.Permission, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := rbac.CanFromContext(r.Context(), perm)
			switch {
			case errors.Is(err, rbac.ErrRoleNotInContext):
				m.RecordDecision(string(perm), metrics.DecisionDenied)
				response.Forbidden(w, "Permission denied")
				return
			case errors.Is(err, rbac.ErrUnknownRole):
				m.RecordDecision(string(perm), metrics.DecisionInvalid)
				logger.LogError(r.Context(), err, "Permission check failed", "permission", string(perm))
				response.SessionInvalid(w)
				return
			case err != nil:
				m.RecordDecision(string(perm), metrics.DecisionInvalid)
				errorhandler.Internal(r.Context(), w, "permission check", err)
				return
			case !ok:
				m.RecordDecision(string(perm), metrics.DecisionDenied)
				logger.LogInfo(r.Context(), "Permission denied",
					"role", string(GetRole(r.Context())),
					"permission", string(perm),
				)
				response.Forbidden(w, "Permission denied")
				return
			}

			m.RecordDecision(string(perm), metrics.DecisionGranted)
			next.ServeHTTP(w, r)
		})
	}
}
