package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/HammerMeetNail/secretapp/internal/logging"
)

const healthTimeout = 5 * time.Second

type HealthChecker interface {
	Health(ctx context.Context) error
}

type namedCheck struct {
	name    string
	checker HealthChecker
}

type HealthHandler struct {
	checks []namedCheck
}

func NewHealthHandler(db, redis HealthChecker) *HealthHandler {
	return &HealthHandler{
		checks: []namedCheck{
			{name: "postgres", checker: db},
			{name: "redis", checker: redis},
		},
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	LatencyMS map[string]int64  `json:"latency_ms"`
	Timestamp string            `json:"timestamp"`
}

// run executes every dependency check and reports whether all passed.
func (h *HealthHandler) run(ctx context.Context) (HealthResponse, bool) {
	response := HealthResponse{
		Status:    "healthy",
		Checks:    make(map[string]string, len(h.checks)),
		LatencyMS: make(map[string]int64, len(h.checks)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	healthy := true
	for _, c := range h.checks {
		start := time.Now()
		err := c.checker.Health(ctx)
		response.LatencyMS[c.name] = time.Since(start).Milliseconds()
		if err != nil {
			healthy = false
			response.Checks[c.name] = "unhealthy: " + err.Error()
			continue
		}
		response.Checks[c.name] = "healthy"
	}

	if !healthy {
		response.Status = "unhealthy"
	}
	return response, healthy
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	response, healthy := h.run(ctx)
	if !healthy {
		logging.Warn("Health check failed", map[string]interface{}{"checks": response.Checks})
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if _, healthy := h.run(ctx); !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
