package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/coachhub/coachhub-api/internal/domain/rbac"
	"github.com/coachhub/coachhub-api/internal/pkg/response"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Status is the overall readiness report
type Status struct {
	Status       string                      `json:"status"`
	Timestamp    time.Time                   `json:"timestamp"`
	Version      string                      `json:"version,omitempty"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

// DependencyStatus is the health of a single dependency
type DependencyStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// Checker reports liveness and readiness. Postgres is required; Redis only
// backs session revocation, so losing it degrades rather than fails.
type Checker struct {
	db      *sqlx.DB
	redis   *redis.Client
	matrix  *rbac.Matrix
	version string
}

// NewChecker creates a health checker. db and redis may be nil.
func NewChecker(db *sqlx.DB, redis *redis.Client, matrix *rbac.Matrix, version string) *Checker {
	return &Checker{db: db, redis: redis, matrix: matrix, version: version}
}

// Liveness handles GET /health/live
func (c *Checker) Liveness(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": StatusHealthy, "version": c.version})
}

// Readiness handles GET /health/ready
func (c *Checker) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := c.Check(ctx)
	if status.Status == StatusUnhealthy {
		response.JSON(w, http.StatusServiceUnavailable, status)
		return
	}
	response.OK(w, status)
}

// Check runs every dependency check
func (c *Checker) Check(ctx context.Context) Status {
	status := Status{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Version:      c.version,
		Dependencies: make(map[string]DependencyStatus),
	}

	if c.matrix != nil {
		dep := c.checkMatrix()
		status.Dependencies["permissions"] = dep
		status.Status = worst(status.Status, dep.Status)
	}

	if c.db != nil {
		dep := c.checkDatabase(ctx)
		status.Dependencies["database"] = dep
		status.Status = worst(status.Status, dep.Status)
	}

	if c.redis != nil {
		dep := c.checkRedis(ctx)
		status.Dependencies["redis"] = dep
		if dep.Status == StatusUnhealthy {
			status.Status = worst(status.Status, StatusDegraded)
		}
	}

	return status
}

func (c *Checker) checkMatrix() DependencyStatus {
	if err := c.matrix.Validate(); err != nil {
		return DependencyStatus{Status: StatusUnhealthy, Message: err.Error()}
	}
	return DependencyStatus{Status: StatusHealthy}
}

func (c *Checker) checkDatabase(ctx context.Context) DependencyStatus {
	start := time.Now()
	var one int
	err := c.db.GetContext(ctx, &one, "SELECT 1")
	dep := DependencyStatus{Status: StatusHealthy, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		dep.Status = StatusUnhealthy
		dep.Message = err.Error()
		return dep
	}

	stats := c.db.Stats()
	if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
		dep.Status = StatusDegraded
		dep.Message = "connection pool exhausted"
	}
	return dep
}

func (c *Checker) checkRedis(ctx context.Context) DependencyStatus {
	start := time.Now()
	err := c.redis.Ping(ctx).Err()
	dep := DependencyStatus{Status: StatusHealthy, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		dep.Status = StatusUnhealthy
		dep.Message = err.Error()
	}
	return dep
}

var rank = map[string]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}

func worst(a, b string) string {
	if rank[b] > rank[a] {
		return b
	}
	return a
}
