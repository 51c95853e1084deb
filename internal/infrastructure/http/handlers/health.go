package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const readinessTimeout = 3 * time.Second

// HealthHandler handles GET /health, the liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// DependencyCheck probes one backing service.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// MongoCheck pings the database with a server round trip.
func MongoCheck(db *mongo.Database) DependencyCheck {
	return DependencyCheck{
		Name: "mongodb",
		Check: func(ctx context.Context) error {
			return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
		},
	}
}

// RedisCheck pings Redis.
func RedisCheck(rdb redis.UniversalClient) DependencyCheck {
	return DependencyCheck{
		Name: "redis",
		Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	}
}

// HealthDependenciesHandler handles GET /health/ready, the readiness probe.
// The service is ready only when every dependency answers.
type HealthDependenciesHandler struct {
	checks []DependencyCheck
}

func NewHealthDependenciesHandler(checks ...DependencyCheck) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{checks: checks}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checks))
	healthy := true

	for _, dc := range h.checks {
		if err := dc.Check(ctx); err != nil {
			deps[dc.Name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[dc.Name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
