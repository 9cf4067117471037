package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	serviceName        = "product-schema-service"
	dependencyCheckTTL = 2 * time.Second
)

// Dependency is a backing service probed by the readiness check. Optional
// dependencies are reported but never make the service unready.
type Dependency struct {
	Name     string
	Optional bool
	Check    func(ctx context.Context) error
}

// DatabaseDependency pings the database behind db.
func DatabaseDependency(db *gorm.DB) Dependency {
	return Dependency{
		Name: "database",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// RedisDependency pings redis. The caches fall through to the database, so
// redis is optional.
func RedisDependency(client *redis.Client) Dependency {
	return Dependency{
		Name:     "redis",
		Optional: true,
		Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

// HealthHandler serves the liveness and readiness endpoints
type HealthHandler struct {
	dependencies []Dependency
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dependencies ...Dependency) *HealthHandler {
	return &HealthHandler{dependencies: dependencies}
}

// HealthCheck provides a health check endpoint
// @Summary Health check
// @Description Check if the service is alive
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck probes every dependency
// @Summary Readiness check
// @Description Check if the database and cache are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dependencyCheckTTL)
	defer cancel()

	ready := true
	checks := gin.H{}
	for _, dep := range h.dependencies {
		if err := dep.Check(ctx); err != nil {
			checks[dep.Name] = "unavailable"
			if !dep.Optional {
				ready = false
			}
			continue
		}
		checks[dep.Name] = "connected"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"service":   serviceName,
			"timestamp": time.Now().UTC(),
			"checks":    checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   serviceName,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}
