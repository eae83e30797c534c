package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDecodeCollectionShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":"s1"},{"id":"s2"}]`, 2},
		{"data envelope", `{"data":[{"id":"s1"}]}`, 1},
		{"sessions envelope", `{"sessions":[{"id":"s1"}]}`, 1},
		{"items envelope", `{"items":[{"id":"s1"},{"id":"s2"},{"id":"s3"}]}`, 3},
		{"unknown envelope", `{"payload":[{"id":"s1"}]}`, 0},
		{"envelope with non-array value", `{"data":"nope"}`, 0},
		{"scalar", `42`, 0},
		{"empty body", ``, 0},
		{"garbage", `{not json`, 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			sessions := decodeSessions([]byte(tc.body))
			if len(sessions) != tc.want {
				t.Errorf("expected %d sessions, got %d", tc.want, len(sessions))
			}
		})
	}
}

func TestClientSendsActorHeaders(t *testing.T) {
	t.Parallel()

	var gotID, gotRole string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Actor-ID")
		gotRole = r.Header.Get("X-Actor-Role")
		_ = json.NewEncoder(w).Encode(map[string]any{"sessions": []any{}})
	}))
	defer server.Close()

	c := New(server.URL, "mentor-1", "mentor", server.Client())
	if _, err := c.ListMentorSessions(context.Background()); err != nil {
		t.Fatalf("ListMentorSessions failed: %v", err)
	}
	if gotID != "mentor-1" || gotRole != "mentor" {
		t.Errorf("expected identity headers, got %q/%q", gotID, gotRole)
	}
}

func TestClientSurfacesTransportErrorVerbatim(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"errorCode":"ILLEGAL_TRANSITION"}`))
	}))
	defer server.Close()

	c := New(server.URL, "mentor-1", "mentor", server.Client())
	_, err := c.TransitionSession(context.Background(), "sess-1", TransitionRequest{Status: "completed"})

	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if tErr.Status != http.StatusConflict {
		t.Errorf("expected status 409, got %d", tErr.Status)
	}
	if tErr.Body != `{"errorCode":"ILLEGAL_TRANSITION"}` {
		t.Errorf("expected body verbatim, got %q", tErr.Body)
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly one attempt (no retries), got %d", calls.Load())
	}
}

func TestClientBookSession(t *testing.T) {
	t.Parallel()

	scheduledAt := time.Date(2026, 4, 8, 13, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/students/sessions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode booking request: %v", err)
		}
		if req.MentorID != "mentor-1" || req.Day != "wednesday" {
			t.Errorf("unexpected booking request %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"session": Session{ID: "sess-1", Status: "scheduled", ScheduledAt: scheduledAt},
		})
	}))
	defer server.Close()

	c := New(server.URL, "student-1", "student", server.Client())
	session, err := c.BookSession(context.Background(), BookingRequest{
		MentorID:    "mentor-1",
		Title:       "Pairing",
		Day:         "wednesday",
		SessionType: "video_call",
		Duration:    60,
	})
	if err != nil {
		t.Fatalf("BookSession failed: %v", err)
	}
	if session.ID != "sess-1" || !session.ScheduledAt.Equal(scheduledAt) {
		t.Errorf("unexpected session %+v", session)
	}
}

func TestFetchCalendarInputsConcurrent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/students/sessions":
			_ = json.NewEncoder(w).Encode(map[string]any{"sessions": []Session{{ID: "sess-1"}}})
		case "/api/students/events":
			_ = json.NewEncoder(w).Encode([]Event{{ID: "ev-1"}, {ID: "ev-2"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := New(server.URL, "student-1", "student", server.Client())
	inputs, err := c.FetchCalendarInputs(context.Background())
	if err != nil {
		t.Fatalf("FetchCalendarInputs failed: %v", err)
	}
	if len(inputs.Sessions) != 1 {
		t.Errorf("expected 1 session, got %d", len(inputs.Sessions))
	}
	if len(inputs.Events) != 2 {
		t.Errorf("expected 2 events, got %d", len(inputs.Events))
	}
}

func TestFetchCalendarInputsFirstErrorWins(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/students/events" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("event store down"))
			return
		}
		_ = json.NewEncoder(w).Encode([]Session{})
	}))
	defer server.Close()

	c := New(server.URL, "student-1", "student", server.Client())
	_, err := c.FetchCalendarInputs(context.Background())

	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if tErr.Status != http.StatusInternalServerError || tErr.Body != "event store down" {
		t.Errorf("unexpected transport error %+v", tErr)
	}
}

func TestClientToleratesUnexpectedObjectBodies(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totally":"unexpected"}`))
	}))
	defer server.Close()

	c := New(server.URL, "mentor-1", "mentor", server.Client())
	sessions, err := c.ListMentorSessions(context.Background())
	if err != nil {
		t.Fatalf("expected tolerant decode, got error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected empty collection, got %d", len(sessions))
	}
}
