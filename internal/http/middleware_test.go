package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/example/mentorhub/internal/application"
	"github.com/example/mentorhub/internal/lifecycle"
)

func TestActorContextStoresPrincipal(t *testing.T) {
	t.Parallel()

	var got application.Principal
	handler := ActorContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(actorIDHeader, "mentor-1")
	req.Header.Set(actorRoleHeader, "mentor")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	if got.ActorID != "mentor-1" || got.Role != lifecycle.RoleMentor {
		t.Errorf("unexpected principal %+v", got)
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	handler := RequireRole(lifecycle.RoleMentor, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), application.Principal{
		ActorID: "student-1",
		Role:    lifecycle.RoleStudent,
	}))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Errorf("expected 403 for wrong role, got %d", recorder.Code)
	}
}

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimiterConfig{
		Rate:            rate.Limit(1),
		Burst:           2,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		statuses = append(statuses, recorder.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("expected the burst to be allowed, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("expected 429 once the burst is spent, got %v", statuses)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(RateLimiterConfig{
		Rate:            rate.Limit(1),
		Burst:           1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first = first.WithContext(ContextWithPrincipal(first.Context(), application.Principal{
		ActorID: "mentor-1", Role: lifecycle.RoleMentor,
	}))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, first)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected first client's request to pass, got %d", recorder.Code)
	}

	// A different actor has its own bucket.
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second = second.WithContext(ContextWithPrincipal(second.Context(), application.Principal{
		ActorID: "mentor-2", Role: lifecycle.RoleMentor,
	}))
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, second)
	if recorder.Code != http.StatusOK {
		t.Errorf("expected second client's request to pass, got %d", recorder.Code)
	}
}

func TestRequestLoggerAttachesLogger(t *testing.T) {
	t.Parallel()

	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Error("expected request logger in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	if recorder.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", recorder.Code)
	}
}
