package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/database"
	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
	"github.com/Shivanand-hulikatti/event-registrations/internal/repository"
	"github.com/Shivanand-hulikatti/event-registrations/internal/service"
)

// openDB connects to TEST_DATABASE_URL with the given session defaults,
// migrates, and empties every table.
func openDB(t *testing.T, isolation string) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, database.Migrate(dsn))

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	if isolation != "" {
		cfg.ConnConfig.RuntimeParams["default_transaction_isolation"] = isolation
	}
	cfg.MaxConns = 8

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE registrations, events, users RESTART IDENTITY`)
	require.NoError(t, err)
	return database.New(pool, 10*time.Second)
}

var isolationDefaults = []string{"", "repeatable read", "serializable"}

func TestWithTxIsReadCommitted(t *testing.T) {
	for _, isolation := range isolationDefaults {
		t.Run("default "+isolation, func(t *testing.T) {
			db := openDB(t, isolation)
			var level string
			err := db.WithTx(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
				return tx.QueryRow(ctx, `SHOW transaction_isolation`).Scan(&level)
			})
			require.NoError(t, err)
			assert.Equal(t, "read committed", level)
		})
	}
}

func TestRegisterConcurrentlyThroughService(t *testing.T) {
	for _, isolation := range isolationDefaults {
		t.Run("default "+isolation, func(t *testing.T) {
			db := openDB(t, isolation)
			ctx := context.Background()
			users := repository.NewUserRepository(db)
			events := repository.NewEventRepository(db)
			regs := repository.NewRegistrationRepository(db)
			admission := service.NewAdmissionService(events, regs, nil)

			const capacity, attendees = 3, 20
			event, err := events.Create(ctx, model.CreateEventRequest{
				Title: "Launch", DateTime: time.Now().Add(time.Hour), Location: "Hall", Capacity: capacity,
			})
			require.NoError(t, err)

			ids := make([]int64, attendees)
			for i := range ids {
				u, err := users.Create(ctx, fmt.Sprintf("User %d", i), fmt.Sprintf("user%d@example.com", i))
				require.NoError(t, err)
				ids[i] = u.ID
			}
			// The first attendee races against itself as well.
			ids = append(ids, ids[0], ids[0])

			errs := make([]error, len(ids))
			var wg sync.WaitGroup
			for i, id := range ids {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, errs[i] = admission.Register(ctx, id, event.ID)
				}()
			}
			wg.Wait()

			var ok, full, dup int
			for _, err := range errs {
				switch {
				case err == nil:
					ok++
				case errors.Is(err, apperror.ErrEventFull):
					full++
				case errors.Is(err, apperror.ErrAlreadyRegistered):
					dup++
				default:
					t.Fatalf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, capacity, ok)
			assert.Equal(t, len(ids)-capacity, full+dup)

			stats, err := admission.Stats(ctx, event.ID)
			require.NoError(t, err)
			assert.Equal(t, capacity, stats.Total)
			assert.Equal(t, 0, stats.Remaining)
		})
	}
}
