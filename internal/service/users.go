package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
)

// UserService orchestrates user signup and lookup.
type UserService struct {
	users         UserStore
	registrations RegistrationStore
}

// NewUserService constructs a UserService.
func NewUserService(users UserStore, registrations RegistrationStore) *UserService {
	return &UserService{users: users, registrations: registrations}
}

// CreateUser validates and stores a new user. Emails are compared
// case-insensitively.
func (s *UserService) CreateUser(ctx context.Context, req model.CreateUserRequest) (_ *model.User, err error) {
	ctx, span := tracer.Start(ctx, "UserService.CreateUser")
	defer func() { endSpan(span, err) }()

	req = normalizeUser(req)
	if err := validateUser(req); err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, req.Name, req.Email)
	if err != nil {
		return nil, wrap("create user", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by id.
func (s *UserService) ListUsers(ctx context.Context) (users []model.User, err error) {
	ctx, span := tracer.Start(ctx, "UserService.ListUsers")
	defer func() { endSpan(span, err) }()

	users, err = s.users.List(ctx)
	if err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

// GetUser returns a single user or apperror.ErrUserNotFound.
func (s *UserService) GetUser(ctx context.Context, id int64) (_ *model.User, err error) {
	ctx, span := tracer.Start(ctx, "UserService.GetUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	if err := validateID("user_id", id); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get user", err)
	}
	return user, nil
}

// DeleteUser removes a user that has no registrations.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "UserService.DeleteUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	if err := validateID("user_id", id); err != nil {
		return err
	}
	return wrap("delete user", s.users.DeleteByID(ctx, id))
}

// ListRegistrations returns the events a user is registered for.
func (s *UserService) ListRegistrations(ctx context.Context, id int64) (events []model.Event, err error) {
	ctx, span := tracer.Start(ctx, "UserService.ListRegistrations", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer func() { endSpan(span, err) }()

	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	events, err = s.registrations.ListEventsByUser(ctx, id)
	if err != nil {
		return nil, wrap("list user registrations", err)
	}
	return events, nil
}
