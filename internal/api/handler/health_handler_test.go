package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health/", "", nil)
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthDependenciesHandler_Readiness(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	t.Run("all up", func(t *testing.T) {
		h := NewHealthDependenciesHandler(map[string]DependencyCheck{"mongodb": ok, "redis": ok})
		c, rec := newContext(http.MethodGet, "/health/ready/", "", nil)
		if err := h.Readiness(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if resp := decode(t, rec); resp["status"] != "ok" {
			t.Fatalf("unexpected payload: %+v", resp)
		}
	})

	t.Run("one down", func(t *testing.T) {
		h := NewHealthDependenciesHandler(map[string]DependencyCheck{"mongodb": ok, "redis": down})
		c, rec := newContext(http.MethodGet, "/health/ready/", "", nil)
		if err := h.Readiness(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		resp := decode(t, rec)
		deps, _ := resp["dependencies"].(map[string]any)
		redis, _ := deps["redis"].(map[string]any)
		if resp["status"] != "degraded" || redis["error"] != "connection refused" {
			t.Fatalf("unexpected payload: %+v", resp)
		}
	})
}
