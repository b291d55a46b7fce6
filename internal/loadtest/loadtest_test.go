package loadtest

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-registrations/internal/handler"
	"github.com/Shivanand-hulikatti/event-registrations/internal/memstore"
	"github.com/Shivanand-hulikatti/event-registrations/internal/service"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memstore.New()
	router := handler.NewRouter(
		handler.NewEventHandler(
			service.NewEventService(store.Events(), store.Registrations()),
			service.NewAdmissionService(store.Events(), store.Registrations(), nil),
		),
		handler.NewUserHandler(service.NewUserService(store.Users(), store.Registrations())),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestRunOversubscribed(t *testing.T) {
	srv := newServer(t)
	opts := Options{BaseURL: srv.URL, Capacity: 5, Users: 20}

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, report.Check(opts))

	assert.Equal(t, 20, report.Attempts)
	assert.Equal(t, 5, report.Admitted)
	assert.Equal(t, 15, report.Full)
	assert.Equal(t, 0, report.Duplicate)
	assert.Equal(t, 0, report.Stats.Remaining)
	assert.Equal(t, float64(100), report.Stats.PercentUsed)
}

func TestRunRepeatedAttempts(t *testing.T) {
	srv := newServer(t)
	opts := Options{BaseURL: srv.URL + "/", Capacity: 10, Users: 4, Attempts: 3, Concurrency: 2}

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, report.Check(opts))

	assert.Equal(t, 12, report.Attempts)
	assert.Equal(t, 4, report.Admitted)
	assert.Equal(t, 8, report.Duplicate)
	assert.Len(t, report.Results, 12)
}

func TestCheckDetectsOverbooking(t *testing.T) {
	opts := Options{Capacity: 2, Users: 3}
	r := &Report{Admitted: 3}
	r.Stats.Total = 3
	assert.Error(t, r.Check(opts))
}

func TestRunUnreachable(t *testing.T) {
	srv := newServer(t)
	url := srv.URL
	srv.Close()

	_, err := Run(context.Background(), Options{BaseURL: url, Capacity: 1, Users: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create event")
}
