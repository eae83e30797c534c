// Package http provides the HTTP handlers and middleware for the mentorhub API.
//
// The router exposes the following endpoints:
//   - PUT /api/mentors/availability: replaces the mentor's weekly template
//     wholesale; responds with the normalized template plus any invariant
//     issues found (warnings, never save blockers).
//   - GET /api/mentors/availability: returns the stored template.
//   - GET /api/mentors/sessions, GET /api/students/sessions: the principal's
//     sessions, optionally narrowed by a comma-separated `status` parameter.
//   - PUT /api/mentors/sessions/{id}: lifecycle transition; the body names
//     the target status and, for completion, the actualDuration/mentorRating/
//     mentorNotes/mentorFeedback payload.
//   - POST /api/mentors/sessions/bulk-complete: applies one shared payload to
//     every listed in-progress session transactionally.
//   - POST /api/students/sessions: books an available template slot.
//   - PUT /api/students/sessions/{id}/cancel: student cancellation.
//   - GET /api/students/events: the shared event feed.
//   - GET /api/calendar?month=YYYY-MM&q=&type=: the merged month grid of the
//     principal's sessions and the event feed.
//   - GET /healthz, GET /metrics: health and Prometheus scrape endpoints.
//
// Actor identity travels in the X-Actor-ID and X-Actor-Role headers; the
// service trusts the fronting gateway to have authenticated the caller.
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
