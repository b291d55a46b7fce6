// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
	"github.com/Shivanand-hulikatti/event-registrations/internal/repository"
)

var tracer = otel.Tracer("github.com/Shivanand-hulikatti/event-registrations/internal/service")

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, name, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	DeleteByID(ctx context.Context, id int64) error
}

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error)
	DeleteByID(ctx context.Context, id int64) error
}

// RegistrationStore persists registrations. Admit must serialize calls for
// the same event across every process sharing the store.
type RegistrationStore interface {
	Admit(ctx context.Context, eventID int64, fn func(ctx context.Context, tx repository.AdmissionTx) error) error
	Delete(ctx context.Context, userID, eventID int64) error
	Count(ctx context.Context, eventID int64) (int, error)
	Exists(ctx context.Context, userID, eventID int64) (bool, error)
	ListUsersByEvent(ctx context.Context, eventID int64) ([]model.User, error)
	ListEventsByUser(ctx context.Context, userID int64) ([]model.Event, error)
}

var (
	_ UserStore         = (*repository.UserRepository)(nil)
	_ EventStore        = (*repository.EventRepository)(nil)
	_ RegistrationStore = (*repository.RegistrationRepository)(nil)
)

// wrap passes domain errors through untouched so handlers can set the
// correct status, and adds op context to anything else.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
