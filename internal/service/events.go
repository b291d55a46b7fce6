package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
)

// EventService orchestrates event CRUD.
type EventService struct {
	events        EventStore
	registrations RegistrationStore
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, registrations RegistrationStore) *EventService {
	return &EventService{events: events, registrations: registrations}
}

// CreateEvent validates the request and delegates to the repository.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (_ *model.Event, err error) {
	ctx, span := tracer.Start(ctx, "EventService.CreateEvent")
	defer func() { endSpan(span, err) }()

	req = normalizeEvent(req)
	if err := validateEvent(req); err != nil {
		return nil, err
	}
	event, err := s.events.Create(ctx, req)
	if err != nil {
		return nil, wrap("create event", err)
	}
	return event, nil
}

// ListEvents returns all events.
func (s *EventService) ListEvents(ctx context.Context) (events []model.Event, err error) {
	ctx, span := tracer.Start(ctx, "EventService.ListEvents")
	defer func() { endSpan(span, err) }()

	events, err = s.events.List(ctx)
	if err != nil {
		return nil, wrap("list events", err)
	}
	return events, nil
}

// GetEvent returns an event with its registered users.
func (s *EventService) GetEvent(ctx context.Context, id int64) (_ *model.EventDetails, err error) {
	ctx, span := tracer.Start(ctx, "EventService.GetEvent", trace.WithAttributes(attribute.Int64("event.id", id)))
	defer func() { endSpan(span, err) }()

	if err := validateID("event_id", id); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get event", err)
	}
	users, err := s.registrations.ListUsersByEvent(ctx, id)
	if err != nil {
		return nil, wrap("list registered users", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return &model.EventDetails{Event: *event, RegisteredUsers: users}, nil
}

// DeleteEvent removes an event that has no registrations.
func (s *EventService) DeleteEvent(ctx context.Context, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "EventService.DeleteEvent", trace.WithAttributes(attribute.Int64("event.id", id)))
	defer func() { endSpan(span, err) }()

	if err := validateID("event_id", id); err != nil {
		return err
	}
	return wrap("delete event", s.events.DeleteByID(ctx, id))
}
