package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
)

func TestCreateEventValidation(t *testing.T) {
	valid := model.CreateEventRequest{
		Title:    "GopherCon",
		DateTime: testNow.Add(time.Hour),
		Location: "Hall A",
		Capacity: 10,
	}

	tests := []struct {
		name   string
		mutate func(*model.CreateEventRequest)
		field  string
	}{
		{"blank title", func(r *model.CreateEventRequest) { r.Title = "   " }, "title"},
		{"long title", func(r *model.CreateEventRequest) { r.Title = strings.Repeat("x", 101) }, "title"},
		{"missing date", func(r *model.CreateEventRequest) { r.DateTime = time.Time{} }, "date_time"},
		{"blank location", func(r *model.CreateEventRequest) { r.Location = "" }, "location"},
		{"zero capacity", func(r *model.CreateEventRequest) { r.Capacity = 0 }, "capacity"},
		{"negative capacity", func(r *model.CreateEventRequest) { r.Capacity = -1 }, "capacity"},
		{"capacity over limit", func(r *model.CreateEventRequest) { r.Capacity = 1001 }, "capacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := valid
			tt.mutate(&req)

			_, err := f.events.CreateEvent(context.Background(), req)
			require.Error(t, err)
			e, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidInput, e.Code)
			assert.Contains(t, e.Fields, tt.field)

			events, err := f.events.ListEvents(context.Background())
			require.NoError(t, err)
			assert.Empty(t, events, "validation must fail before reaching the store")
		})
	}
}

func TestCreateEventBoundaries(t *testing.T) {
	f := newFixture(t)
	for _, capacity := range []int{1, 1000} {
		e, err := f.events.CreateEvent(context.Background(), model.CreateEventRequest{
			Title:    "  Edge  ",
			DateTime: testNow.Add(time.Hour),
			Location: strings.Repeat("é", 100),
			Capacity: capacity,
		})
		require.NoError(t, err)
		assert.Equal(t, "Edge", e.Title)
		assert.Equal(t, capacity, e.Capacity)
	}
}

func TestGetEventIncludesRegisteredUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 5, testNow.Add(time.Hour))
	u1, u2 := f.user(t, 1), f.user(t, 2)

	details, err := f.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.User{}, details.RegisteredUsers)

	_, err = f.admission.Register(ctx, u2.ID, event.ID)
	require.NoError(t, err)
	_, err = f.admission.Register(ctx, u1.ID, event.ID)
	require.NoError(t, err)

	details, err = f.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, *event, details.Event)
	assert.Equal(t, []model.User{*u2, *u1}, details.RegisteredUsers)

	_, err = f.events.GetEvent(ctx, 77)
	require.ErrorIs(t, err, apperror.ErrEventNotFound)
}

func TestDeleteEventBlockedByRegistrations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 5, testNow.Add(time.Hour))
	u := f.user(t, 1)
	_, err := f.admission.Register(ctx, u.ID, event.ID)
	require.NoError(t, err)

	err = f.events.DeleteEvent(ctx, event.ID)
	require.ErrorIs(t, err, apperror.ErrStillReferenced)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	require.NoError(t, f.admission.Cancel(ctx, u.ID, event.ID))
	require.NoError(t, f.events.DeleteEvent(ctx, event.ID))
	require.ErrorIs(t, f.events.DeleteEvent(ctx, event.ID), apperror.ErrEventNotFound)
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.CreateUser(ctx, model.CreateUserRequest{Name: " Ada ", Email: " Ada@Example.COM "})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "ada@example.com", u.Email)

	_, err = f.users.CreateUser(ctx, model.CreateUserRequest{Name: "Other Ada", Email: "ADA@example.com"})
	require.ErrorIs(t, err, apperror.ErrEmailTaken)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   model.CreateUserRequest
		field string
	}{
		{"missing name", model.CreateUserRequest{Email: "a@example.com"}, "name"},
		{"long name", model.CreateUserRequest{Name: strings.Repeat("n", 101), Email: "a@example.com"}, "name"},
		{"missing email", model.CreateUserRequest{Name: "A"}, "email"},
		{"malformed email", model.CreateUserRequest{Name: "A", Email: "not-an-email"}, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.users.CreateUser(context.Background(), tt.req)
			e, ok := apperror.As(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, apperror.CodeInvalidInput, e.Code)
			assert.Contains(t, e.Fields, tt.field)
		})
	}
}

func TestUserLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1, u2 := f.user(t, 1), f.user(t, 2)

	users, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.User{*u1, *u2}, users)

	got, err := f.users.GetUser(ctx, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, u2, got)

	require.NoError(t, f.users.DeleteUser(ctx, u1.ID))
	_, err = f.users.GetUser(ctx, u1.ID)
	require.ErrorIs(t, err, apperror.ErrUserNotFound)
	require.ErrorIs(t, f.users.DeleteUser(ctx, u1.ID), apperror.ErrUserNotFound)
}

func TestDeleteUserBlockedByRegistrations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.event(t, 5, testNow.Add(time.Hour))
	u := f.user(t, 1)
	_, err := f.admission.Register(ctx, u.ID, event.ID)
	require.NoError(t, err)

	require.ErrorIs(t, f.users.DeleteUser(ctx, u.ID), apperror.ErrStillReferenced)
}

func TestListUserRegistrations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	later := f.event(t, 5, testNow.Add(48*time.Hour))
	sooner := f.event(t, 5, testNow.Add(24*time.Hour))
	u := f.user(t, 1)

	events, err := f.users.ListRegistrations(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	for _, e := range []*model.Event{later, sooner} {
		_, err := f.admission.Register(ctx, u.ID, e.ID)
		require.NoError(t, err)
	}

	events, err = f.users.ListRegistrations(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, sooner.ID, events[0].ID)
	assert.Equal(t, later.ID, events[1].ID)

	_, err = f.users.ListRegistrations(ctx, 999)
	require.ErrorIs(t, err, apperror.ErrUserNotFound)
}
