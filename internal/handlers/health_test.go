package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Health(ctx context.Context) error {
	return m.err
}

func TestHealthHandler_Health(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		redisErr   error
		wantStatus int
		wantState  string
	}{
		{name: "all healthy", wantStatus: http.StatusOK, wantState: "healthy"},
		{name: "db down", dbErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantState: "unhealthy"},
		{name: "redis down", redisErr: errors.New("timeout"), wantStatus: http.StatusServiceUnavailable, wantState: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(&mockHealthChecker{err: tt.dbErr}, &mockHealthChecker{err: tt.redisErr})

			rr := httptest.NewRecorder()
			handler.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}

			var response HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if response.Status != tt.wantState {
				t.Errorf("expected status %q, got %q", tt.wantState, response.Status)
			}
			if tt.dbErr != nil && !strings.Contains(response.Checks["postgres"], tt.dbErr.Error()) {
				t.Errorf("expected postgres error in checks, got %q", response.Checks["postgres"])
			}
			if tt.redisErr == nil && response.Checks["redis"] != "healthy" {
				t.Errorf("expected redis healthy, got %q", response.Checks["redis"])
			}
			if _, ok := response.LatencyMS["postgres"]; !ok {
				t.Error("expected postgres latency to be reported")
			}
		})
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	handler := NewHealthHandler(&mockHealthChecker{}, &mockHealthChecker{})
	rr := httptest.NewRecorder()
	handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ready" {
		t.Fatalf("expected ready, got %d %q", rr.Code, rr.Body.String())
	}

	handler = NewHealthHandler(&mockHealthChecker{}, &mockHealthChecker{err: errors.New("down")})
	rr = httptest.NewRecorder()
	handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusServiceUnavailable || rr.Body.String() != "not ready" {
		t.Fatalf("expected not ready, got %d %q", rr.Code, rr.Body.String())
	}
}

func TestHealthHandler_Live(t *testing.T) {
	handler := NewHealthHandler(&mockHealthChecker{err: errors.New("down")}, &mockHealthChecker{})
	rr := httptest.NewRecorder()
	handler.Live(rr, httptest.NewRequest(http.MethodGet, "/live", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "alive" {
		t.Fatalf("expected alive regardless of dependencies, got %d %q", rr.Code, rr.Body.String())
	}
}
