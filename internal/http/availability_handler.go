package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/mentorhub/internal/application"
	"github.com/example/mentorhub/internal/availability"
)

type availabilityService interface {
	SaveTemplate(ctx context.Context, params application.SaveTemplateParams) (availability.Template, []application.TemplateIssue, error)
	GetTemplate(ctx context.Context, mentorID string) (application.MentorTemplate, error)
}

type AvailabilityHandler struct {
	service   availabilityService
	responder responder
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{service: service, responder: newResponder(logger)}
}

type slotDTO struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}

type dayDTO struct {
	Day   string    `json:"day"`
	Slots []slotDTO `json:"slots"`
}

type templateDTO struct {
	Timezone string   `json:"timezone"`
	Schedule []dayDTO `json:"schedule"`
}

type templateIssueDTO struct {
	Day     string `json:"day"`
	Slot    int    `json:"slot"`
	Message string `json:"message"`
}

type templateResponse struct {
	MentorID  string             `json:"mentorId"`
	Template  templateDTO        `json:"template"`
	Issues    []templateIssueDTO `json:"issues,omitempty"`
	UpdatedAt *time.Time         `json:"updatedAt,omitempty"`
}

// Save replaces the mentor's availability template wholesale.
func (h *AvailabilityHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req templateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	saved, issues, err := h.service.SaveTemplate(r.Context(), application.SaveTemplateParams{
		Principal: principal,
		Template:  req.toTemplate(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, templateResponse{
		MentorID: principal.ActorID,
		Template: toTemplateDTO(saved),
		Issues:   toIssueDTOs(issues),
	})
}

// Get returns the mentor's stored template.
func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	stored, err := h.service.GetTemplate(r.Context(), principal.ActorID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	updatedAt := stored.UpdatedAt
	h.responder.writeJSON(r.Context(), w, http.StatusOK, templateResponse{
		MentorID:  stored.MentorID,
		Template:  toTemplateDTO(stored.Template),
		UpdatedAt: &updatedAt,
	})
}

func (req templateDTO) toTemplate() availability.Template {
	template := availability.Template{Timezone: req.Timezone}
	for _, day := range req.Schedule {
		slots := make([]availability.TimeSlot, 0, len(day.Slots))
		for _, slot := range day.Slots {
			slots = append(slots, availability.TimeSlot{
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				Available: slot.Available,
			})
		}
		template.Schedule = append(template.Schedule, availability.DayAvailability{
			Day:   availability.Weekday(day.Day),
			Slots: slots,
		})
	}
	return template
}

func toTemplateDTO(template availability.Template) templateDTO {
	dto := templateDTO{Timezone: template.Timezone, Schedule: make([]dayDTO, 0, len(template.Schedule))}
	for _, day := range template.Schedule {
		slots := make([]slotDTO, 0, len(day.Slots))
		for _, slot := range day.Slots {
			slots = append(slots, slotDTO{
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				Available: slot.Available,
			})
		}
		dto.Schedule = append(dto.Schedule, dayDTO{Day: string(day.Day), Slots: slots})
	}
	return dto
}

func toIssueDTOs(issues []application.TemplateIssue) []templateIssueDTO {
	if len(issues) == 0 {
		return nil
	}
	out := make([]templateIssueDTO, 0, len(issues))
	for _, issue := range issues {
		out = append(out, templateIssueDTO{
			Day:     string(issue.Day),
			Slot:    issue.Slot,
			Message: issue.Message,
		})
	}
	return out
}
