package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/mentorhub/internal/availability"
	"github.com/example/mentorhub/internal/lifecycle"
	"github.com/example/mentorhub/internal/persistence"
)

// TemplateRepository captures the persistence interactions needed by the
// availability service.
type TemplateRepository interface {
	SaveTemplate(ctx context.Context, template MentorTemplate) error
	GetTemplate(ctx context.Context, mentorID string) (MentorTemplate, error)
}

// AvailabilityService orchestrates validation and persistence for mentor
// availability templates.
type AvailabilityService struct {
	templates TemplateRepository
	now       func() time.Time
	logger    *slog.Logger
}

// NewAvailabilityService wires dependencies for availability operations.
func NewAvailabilityService(templates TemplateRepository, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		templates: templates,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

// SaveTemplate normalizes and persists the mentor's template wholesale. The
// normalized template is returned together with any invariant issues found;
// issues warn the caller but never block the save.
func (s *AvailabilityService) SaveTemplate(ctx context.Context, params SaveTemplateParams) (availability.Template, []TemplateIssue, error) {
	if s == nil {
		return availability.Template{}, nil, fmt.Errorf("AvailabilityService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "availability", "save_template", "mentor_id", params.Principal.ActorID)

	if params.Principal.Role != lifecycle.RoleMentor {
		logger.Warn("template save rejected", "error_kind", ErrorKind(ErrUnauthorized))
		return availability.Template{}, nil, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if params.Principal.ActorID == "" {
		vErr.add("mentorId", "mentor id is required")
	}
	if params.Template.Timezone == "" {
		vErr.add("timezone", "timezone is required")
	} else if _, err := time.LoadLocation(params.Template.Timezone); err != nil {
		vErr.add("timezone", "unknown timezone")
	}
	for _, day := range params.Template.Schedule {
		if _, ok := availability.ParseWeekday(string(day.Day)); !ok {
			vErr.add("schedule", fmt.Sprintf("unknown day %q", day.Day))
			break
		}
	}
	if vErr.HasErrors() {
		logger.Warn("template save rejected", "error_kind", ErrorKind(vErr))
		return availability.Template{}, nil, vErr
	}

	template := params.Template.Clone()
	template.Normalize()

	issues := make([]TemplateIssue, 0)
	for _, issue := range template.Validate() {
		issues = append(issues, TemplateIssue{Day: issue.Day, Slot: issue.Index, Message: issue.Message})
	}
	if len(issues) == 0 {
		issues = nil
	}

	stored := MentorTemplate{
		MentorID:  params.Principal.ActorID,
		Template:  template,
		UpdatedAt: s.now(),
	}
	if err := s.templates.SaveTemplate(ctx, stored); err != nil {
		logger.Error("template save failed", "error", err)
		return availability.Template{}, nil, err
	}

	logger.Info("template saved", "days", len(template.Schedule), "issues", len(issues))
	return template, issues, nil
}

// GetTemplate loads the mentor's stored template.
func (s *AvailabilityService) GetTemplate(ctx context.Context, mentorID string) (MentorTemplate, error) {
	if s == nil {
		return MentorTemplate{}, fmt.Errorf("AvailabilityService is nil")
	}
	if mentorID == "" {
		return MentorTemplate{}, ErrNotFound
	}

	stored, err := s.templates.GetTemplate(ctx, mentorID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return MentorTemplate{}, ErrNotFound
		}
		return MentorTemplate{}, err
	}
	return stored, nil
}
