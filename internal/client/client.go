// Package client is a Go client for the mentorhub REST API. Collection
// responses are decoded tolerantly: bare arrays and the common envelope keys
// are accepted, anything else decodes to an empty collection. Failures are
// surfaced verbatim as TransportError with no retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Client calls the mentorhub API on behalf of one actor.
type Client struct {
	baseURL   string
	actorID   string
	actorRole string
	http      *http.Client
}

// New creates a client for the given base URL acting as the given principal.
// A nil httpClient falls back to http.DefaultClient.
func New(baseURL, actorID, actorRole string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		actorID:   actorID,
		actorRole: actorRole,
		http:      httpClient,
	}
}

// Session mirrors the API session payload.
type Session struct {
	ID             string     `json:"id"`
	MentorID       string     `json:"mentorId"`
	StudentID      string     `json:"studentId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ScheduledAt    time.Time  `json:"scheduledAt"`
	Duration       int        `json:"duration"`
	SessionType    string     `json:"sessionType"`
	Status         string     `json:"status"`
	ActualDuration *int       `json:"actualDuration"`
	MentorRating   *int       `json:"mentorRating"`
	MentorNotes    *string    `json:"mentorNotes"`
	MentorFeedback *string    `json:"mentorFeedback"`
	CompletedAt    *time.Time `json:"completedAt"`
}

// Event mirrors the API event payload.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Type        string    `json:"type"`
}

// TimeSlot mirrors the API availability slot payload.
type TimeSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

// DayAvailability mirrors the API availability day payload.
type DayAvailability struct {
	Day   string     `json:"day"`
	Slots []TimeSlot `json:"slots"`
}

// Template mirrors the API availability template payload.
type Template struct {
	Timezone string            `json:"timezone"`
	Schedule []DayAvailability `json:"schedule"`
}

// TemplateIssue mirrors the non-blocking issues returned on save.
type TemplateIssue struct {
	Day     string `json:"day"`
	Slot    int    `json:"slot"`
	Message string `json:"message"`
}

// BookingRequest is the body of a student booking. ScheduledDate books an
// explicit start instant; Day and SlotIndex book the next occurrence of a
// template slot. Exactly one of the two modes applies.
type BookingRequest struct {
	MentorID      string     `json:"mentorId"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	Day           string     `json:"day,omitempty"`
	SlotIndex     int        `json:"slotIndex,omitempty"`
	SessionType   string     `json:"sessionType"`
	Duration      int        `json:"duration"`
}

// TransitionRequest is the body of a mentor status transition.
type TransitionRequest struct {
	Status         string `json:"status"`
	ActualDuration int    `json:"actualDuration,omitempty"`
	MentorRating   int    `json:"mentorRating,omitempty"`
	MentorNotes    string `json:"mentorNotes,omitempty"`
	MentorFeedback string `json:"mentorFeedback,omitempty"`
}

// BulkCompleteRequest is the body of a bulk completion.
type BulkCompleteRequest struct {
	SessionIDs []string `json:"sessionIds"`
	Duration   int      `json:"duration"`
	Rating     int      `json:"rating"`
	Notes      string   `json:"notes"`
	Feedback   string   `json:"feedback"`
}

// TransportError carries a non-2xx response verbatim.
type TransportError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("client: request failed with status %d: %s", e.Status, e.Body)
}

// SaveAvailability replaces the mentor's availability template.
func (c *Client) SaveAvailability(ctx context.Context, template Template) (Template, []TemplateIssue, error) {
	body, err := c.do(ctx, http.MethodPut, "/api/mentors/availability", template)
	if err != nil {
		return Template{}, nil, err
	}

	var response struct {
		Template Template        `json:"template"`
		Issues   []TemplateIssue `json:"issues"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return Template{}, nil, nil
	}
	return response.Template, response.Issues, nil
}

// GetAvailability fetches the mentor's stored template.
func (c *Client) GetAvailability(ctx context.Context) (Template, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/mentors/availability", nil)
	if err != nil {
		return Template{}, err
	}

	var response struct {
		Template Template `json:"template"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return Template{}, nil
	}
	return response.Template, nil
}

// ListMentorSessions lists the mentor's sessions.
func (c *Client) ListMentorSessions(ctx context.Context) ([]Session, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/mentors/sessions", nil)
	if err != nil {
		return nil, err
	}
	return decodeSessions(body), nil
}

// ListStudentSessions lists the student's sessions.
func (c *Client) ListStudentSessions(ctx context.Context) ([]Session, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/students/sessions", nil)
	if err != nil {
		return nil, err
	}
	return decodeSessions(body), nil
}

// BookSession books an available template slot.
func (c *Client) BookSession(ctx context.Context, req BookingRequest) (Session, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/students/sessions", req)
	if err != nil {
		return Session{}, err
	}

	var response struct {
		Session Session `json:"session"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return Session{}, nil
	}
	return response.Session, nil
}

// TransitionSession moves a session to the requested status.
func (c *Client) TransitionSession(ctx context.Context, sessionID string, req TransitionRequest) (Session, error) {
	body, err := c.do(ctx, http.MethodPut, "/api/mentors/sessions/"+sessionID, req)
	if err != nil {
		return Session{}, err
	}

	var response struct {
		Session Session `json:"session"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return Session{}, nil
	}
	return response.Session, nil
}

// CancelSession cancels the student's session.
func (c *Client) CancelSession(ctx context.Context, sessionID string) (Session, error) {
	body, err := c.do(ctx, http.MethodPut, "/api/students/sessions/"+sessionID+"/cancel", nil)
	if err != nil {
		return Session{}, err
	}

	var response struct {
		Session Session `json:"session"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return Session{}, nil
	}
	return response.Session, nil
}

// BulkComplete applies one completion payload to every selected session.
func (c *Client) BulkComplete(ctx context.Context, req BulkCompleteRequest) ([]Session, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/mentors/sessions/bulk-complete", req)
	if err != nil {
		return nil, err
	}

	var response struct {
		Completed []Session `json:"completed"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, nil
	}
	return response.Completed, nil
}

// ListEvents fetches the shared event feed.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/students/events", nil)
	if err != nil {
		return nil, err
	}
	return decodeEvents(body), nil
}

// CalendarInputs bundles the two sources the calendar merge consumes.
type CalendarInputs struct {
	Sessions []Session
	Events   []Event
}

// FetchCalendarInputs issues the session and event list calls concurrently.
// Both must resolve before the result is returned; the first error wins.
func (c *Client) FetchCalendarInputs(ctx context.Context) (CalendarInputs, error) {
	var (
		wg          sync.WaitGroup
		inputs      CalendarInputs
		sessionsErr error
		eventsErr   error
	)

	listSessions := c.ListStudentSessions
	if c.actorRole == "mentor" {
		listSessions = c.ListMentorSessions
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		inputs.Sessions, sessionsErr = listSessions(ctx)
	}()
	go func() {
		defer wg.Done()
		inputs.Events, eventsErr = c.ListEvents(ctx)
	}()
	wg.Wait()

	if sessionsErr != nil {
		return CalendarInputs{}, sessionsErr
	}
	if eventsErr != nil {
		return CalendarInputs{}, eventsErr
	}
	return inputs, nil
}

// do issues one request and returns the response body. Non-2xx statuses
// become a TransportError carrying the body verbatim; no retries happen at
// this layer.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("client: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("client: failed to build request: %w", err)
	}
	req.Header.Set("X-Actor-ID", c.actorID)
	req.Header.Set("X-Actor-Role", c.actorRole)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// envelopeKeys are the collection wrappers accepted besides bare arrays.
var envelopeKeys = []string{"data", "sessions", "events", "items", "completed"}

// decodeCollection accepts a bare array or a single-key envelope and decodes
// its elements into out (a pointer to a slice). Any other shape leaves out
// empty.
func decodeCollection(body []byte, out any) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return
	}

	if trimmed[0] == '[' {
		_ = json.Unmarshal(trimmed, out)
		return
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return
	}
	for _, key := range envelopeKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			_ = json.Unmarshal(raw, out)
			return
		}
	}
}

func decodeSessions(body []byte) []Session {
	sessions := make([]Session, 0)
	decodeCollection(body, &sessions)
	return sessions
}

func decodeEvents(body []byte) []Event {
	events := make([]Event, 0)
	decodeCollection(body, &events)
	return events
}
