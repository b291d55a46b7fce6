package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
	"github.com/Shivanand-hulikatti/event-registrations/internal/repository"
)

// AdmissionService decides whether a user may hold a seat at an event.
type AdmissionService struct {
	events        EventStore
	registrations RegistrationStore
	now           func() time.Time
}

// NewAdmissionService constructs an AdmissionService. now defaults to
// time.Now when nil.
func NewAdmissionService(events EventStore, registrations RegistrationStore, now func() time.Time) *AdmissionService {
	if now == nil {
		now = time.Now
	}
	return &AdmissionService{events: events, registrations: registrations, now: now}
}

// Register admits userID to eventID. Checks run in order while the event is
// locked: the event exists, it has not started, the user is not already
// registered, and a seat is free.
func (s *AdmissionService) Register(ctx context.Context, userID, eventID int64) (reg *model.Registration, err error) {
	ctx, span := tracer.Start(ctx, "AdmissionService.Register", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("event.id", eventID),
	))
	defer func() { endSpan(span, err) }()

	if err := validateID("user_id", userID); err != nil {
		return nil, err
	}
	if err := validateID("event_id", eventID); err != nil {
		return nil, err
	}

	err = s.registrations.Admit(ctx, eventID, func(ctx context.Context, tx repository.AdmissionTx) error {
		event := tx.Event()
		if event.IsPast(s.now()) {
			return apperror.ErrPastEvent
		}

		// Advisory: the primary key rejects a duplicate insert as well.
		exists, err := tx.Exists(ctx, userID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.ErrAlreadyRegistered
		}

		n, err := tx.Count(ctx)
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.Int("event.registrations", n), attribute.Int("event.capacity", event.Capacity))
		if n >= event.Capacity {
			return apperror.ErrEventFull
		}

		reg, err = tx.Insert(ctx, userID)
		return err
	})
	if err != nil {
		return nil, wrap("register for event", err)
	}
	return reg, nil
}

// Cancel removes the registration of userID for eventID.
func (s *AdmissionService) Cancel(ctx context.Context, userID, eventID int64) (err error) {
	ctx, span := tracer.Start(ctx, "AdmissionService.Cancel", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("event.id", eventID),
	))
	defer func() { endSpan(span, err) }()

	if err := validateID("user_id", userID); err != nil {
		return err
	}
	if err := validateID("event_id", eventID); err != nil {
		return err
	}
	return wrap("cancel registration", s.registrations.Delete(ctx, userID, eventID))
}

// ListUpcoming returns events that have not started yet, soonest first and
// then by location.
func (s *AdmissionService) ListUpcoming(ctx context.Context) (events []model.Event, err error) {
	ctx, span := tracer.Start(ctx, "AdmissionService.ListUpcoming")
	defer func() { endSpan(span, err) }()

	events, err = s.events.ListUpcoming(ctx, s.now())
	if err != nil {
		return nil, wrap("list upcoming events", err)
	}
	return events, nil
}

// Stats reports how many seats of eventID are taken.
func (s *AdmissionService) Stats(ctx context.Context, eventID int64) (_ *model.EventStats, err error) {
	ctx, span := tracer.Start(ctx, "AdmissionService.Stats", trace.WithAttributes(attribute.Int64("event.id", eventID)))
	defer func() { endSpan(span, err) }()

	if err := validateID("event_id", eventID); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, wrap("get event", err)
	}
	total, err := s.registrations.Count(ctx, eventID)
	if err != nil {
		return nil, wrap("count registrations", err)
	}
	stats := model.NewEventStats(event.ID, total, event.Capacity)
	return &stats, nil
}
