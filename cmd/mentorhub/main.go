package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/example/mentorhub/internal/application"
	"github.com/example/mentorhub/internal/availability"
	"github.com/example/mentorhub/internal/calendar"
	"github.com/example/mentorhub/internal/config"
	httptransport "github.com/example/mentorhub/internal/http"
	"github.com/example/mentorhub/internal/lifecycle"
	"github.com/example/mentorhub/internal/metrics"
	"github.com/example/mentorhub/internal/persistence"
	"github.com/example/mentorhub/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	timezone, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	templateRepo := newTemplateRepositoryAdapter(sqlite.NewAvailabilityRepository(pool))
	sessionRepo := newSessionRepositoryAdapter(sqlite.NewSessionRepository(pool))
	eventSource := newEventSourceAdapter(sqlite.NewEventRepository(pool))

	availabilityService := application.NewAvailabilityService(templateRepo, now, logger)
	bookingService := application.NewBookingService(sessionRepo, templateRepo, idGenerator, now, logger)
	sessionService := application.NewSessionService(sessionRepo, now, logger)
	calendarService := application.NewCalendarService(sessionRepo, eventSource, timezone, cfg.CalendarCacheTTL, now, logger)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	rateLimiterConfig := httptransport.DefaultRateLimiterConfig()
	rateLimiterConfig.Rate = rate.Limit(cfg.RateLimitRPS)
	rateLimiterConfig.Burst = cfg.RateLimitBurst
	rateLimiter := httptransport.NewRateLimiter(rateLimiterConfig)
	defer rateLimiter.Stop()

	availabilityHandler := httptransport.NewAvailabilityHandler(availabilityService, logger)
	sessionHandler := httptransport.NewSessionHandler(sessionService, bookingService, collector, calendarService.InvalidateCache, logger)
	calendarHandler := httptransport.NewCalendarHandler(calendarService, eventSource, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Availability: availabilityHandler,
		Sessions:     sessionHandler,
		Calendar:     calendarHandler,
		Health:       pool,
		MetricsPage:  metrics.Handler(registry),
		Logger:       logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Metrics(collector),
			rateLimiter.Middleware(),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("mentorhub API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

type templateRepositoryAdapter struct {
	repo persistence.AvailabilityRepository
}

func newTemplateRepositoryAdapter(repo persistence.AvailabilityRepository) *templateRepositoryAdapter {
	return &templateRepositoryAdapter{repo: repo}
}

func (a *templateRepositoryAdapter) SaveTemplate(ctx context.Context, template application.MentorTemplate) error {
	return a.repo.SaveTemplate(ctx, toPersistenceTemplate(template))
}

func (a *templateRepositoryAdapter) GetTemplate(ctx context.Context, mentorID string) (application.MentorTemplate, error) {
	stored, err := a.repo.GetTemplate(ctx, mentorID)
	if err != nil {
		return application.MentorTemplate{}, err
	}
	return toApplicationTemplate(stored), nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) error {
	return a.repo.CreateSession(ctx, toPersistenceSession(session))
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, id string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) error {
	return a.repo.UpdateSession(ctx, toPersistenceSession(session))
}

func (a *sessionRepositoryAdapter) ListSessions(ctx context.Context, filter application.SessionFilter) ([]application.Session, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}
	models, err := a.repo.ListSessions(ctx, persistence.SessionFilter{
		MentorID:  filter.MentorID,
		StudentID: filter.StudentID,
		Statuses:  statuses,
	})
	if err != nil {
		return nil, err
	}
	sessions := make([]application.Session, 0, len(models))
	for _, model := range models {
		sessions = append(sessions, toApplicationSession(model))
	}
	return sessions, nil
}

func (a *sessionRepositoryAdapter) BulkComplete(ctx context.Context, ids []string, completion lifecycle.CompletionPayload, updatedAt time.Time) error {
	return a.repo.BulkComplete(ctx, ids, persistence.Completion{
		ActualDuration: completion.ActualDuration,
		Rating:         completion.Rating,
		Notes:          completion.Notes,
		Feedback:       completion.Feedback,
		CompletedAt:    completion.CompletedAt,
	}, updatedAt)
}

type eventSourceAdapter struct {
	repo persistence.EventRepository
}

func newEventSourceAdapter(repo persistence.EventRepository) *eventSourceAdapter {
	return &eventSourceAdapter{repo: repo}
}

func (a *eventSourceAdapter) ListEvents(ctx context.Context) ([]application.Event, error) {
	models, err := a.repo.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		events = append(events, application.Event{
			ID:          model.ID,
			Title:       model.Title,
			Description: model.Description,
			StartAt:     model.StartAt,
			EndAt:       model.EndAt,
			Type:        calendar.EventType(model.Type),
			CreatedAt:   model.CreatedAt,
		})
	}
	return events, nil
}

func toPersistenceTemplate(template application.MentorTemplate) persistence.AvailabilityTemplate {
	schedule := make([]persistence.DayAvailability, 0, len(template.Template.Schedule))
	for _, day := range template.Template.Schedule {
		slots := make([]persistence.TimeSlot, 0, len(day.Slots))
		for _, slot := range day.Slots {
			slots = append(slots, persistence.TimeSlot{
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				Available: slot.Available,
			})
		}
		schedule = append(schedule, persistence.DayAvailability{
			Day:   string(day.Day),
			Slots: slots,
		})
	}
	return persistence.AvailabilityTemplate{
		MentorID:  template.MentorID,
		Timezone:  template.Template.Timezone,
		Schedule:  schedule,
		UpdatedAt: template.UpdatedAt,
	}
}

func toApplicationTemplate(model persistence.AvailabilityTemplate) application.MentorTemplate {
	schedule := make([]availability.DayAvailability, 0, len(model.Schedule))
	for _, day := range model.Schedule {
		slots := make([]availability.TimeSlot, 0, len(day.Slots))
		for _, slot := range day.Slots {
			slots = append(slots, availability.TimeSlot{
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				Available: slot.Available,
			})
		}
		schedule = append(schedule, availability.DayAvailability{
			Day:   availability.Weekday(day.Day),
			Slots: slots,
		})
	}
	return application.MentorTemplate{
		MentorID: model.MentorID,
		Template: availability.Template{
			Timezone: model.Timezone,
			Schedule: schedule,
		},
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:             session.ID,
		MentorID:       session.MentorID,
		StudentID:      session.StudentID,
		Title:          session.Title,
		Description:    session.Description,
		ScheduledAt:    session.ScheduledAt,
		Duration:       session.Duration,
		SessionType:    string(session.SessionType),
		Status:         string(session.Status),
		ActualDuration: session.ActualDuration,
		MentorRating:   session.MentorRating,
		MentorNotes:    session.MentorNotes,
		MentorFeedback: session.MentorFeedback,
		CompletedAt:    session.CompletedAt,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:             model.ID,
		MentorID:       model.MentorID,
		StudentID:      model.StudentID,
		Title:          model.Title,
		Description:    model.Description,
		ScheduledAt:    model.ScheduledAt,
		Duration:       model.Duration,
		SessionType:    application.SessionType(model.SessionType),
		Status:         lifecycle.Status(model.Status),
		ActualDuration: model.ActualDuration,
		MentorRating:   model.MentorRating,
		MentorNotes:    model.MentorNotes,
		MentorFeedback: model.MentorFeedback,
		CompletedAt:    model.CompletedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}
