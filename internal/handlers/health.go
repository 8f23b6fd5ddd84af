package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/okovalenko/wishlink/internal/logging"
)

// HealthChecker is implemented by the backing stores the service cannot run
// without.
type HealthChecker interface {
	Health(ctx context.Context) error
}

const healthCheckTimeout = 5 * time.Second

type HealthHandler struct {
	deps []namedChecker
}

type namedChecker struct {
	name    string
	checker HealthChecker
}

func NewHealthHandler(db, redis HealthChecker) *HealthHandler {
	return &HealthHandler{
		deps: []namedChecker{
			{name: "postgres", checker: db},
			{name: "redis", checker: redis},
		},
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Health probes every dependency and reports per-check detail. Any failing
// dependency turns the whole response 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Checks:    make(map[string]string, len(h.deps)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	for _, dep := range h.deps {
		if err := dep.checker.Health(ctx); err != nil {
			logging.Warn("Health check failed", logging.Fields{
				"dependency": dep.name,
				"error":      err.Error(),
			})
			response.Status = "unhealthy"
			response.Checks[dep.name] = "unhealthy: " + err.Error()
			continue
		}
		response.Checks[dep.name] = "healthy"
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// Ready is the readiness probe: pass/fail only, no detail in the body.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	for _, dep := range h.deps {
		if err := dep.checker.Health(ctx); err != nil {
			logging.Warn("Readiness check failed", logging.Fields{
				"dependency": dep.name,
				"error":      err.Error(),
			})
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not ready"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Live only proves the process is serving requests.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}
