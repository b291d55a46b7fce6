package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/database"
	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
)

const eventColumns = `id, title, date_time, location, capacity`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	if err := row.Scan(&e.ID, &e.Title, &e.DateTime, &e.Location, &e.Capacity); err != nil {
		return nil, err
	}
	e.DateTime = e.DateTime.UTC()
	return &e, nil
}

// EventRepository handles persistence for events.
type EventRepository struct {
	db *database.DB
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event and returns it with its store-assigned id.
func (r *EventRepository) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	var event *model.Event
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		var err error
		event, err = scanEvent(q.QueryRow(ctx,
			`INSERT INTO events (title, date_time, location, capacity)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+eventColumns,
			req.Title, req.DateTime, req.Location, req.Capacity,
		))
		return err
	})
	if err != nil {
		return nil, translate("insert event", err)
	}
	return event, nil
}

// GetByID returns a single event or apperror.ErrEventNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	var event *model.Event
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		var err error
		event, err = scanEvent(q.QueryRow(ctx,
			`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrEventNotFound
	}
	if err != nil {
		return nil, translate("get event", err)
	}
	return event, nil
}

// List returns all events ordered by id.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	return r.query(ctx, "list events", `SELECT `+eventColumns+` FROM events ORDER BY id`)
}

// ListUpcoming returns events scheduled strictly after now, soonest first,
// ties broken by location.
func (r *EventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error) {
	return r.query(ctx, "list upcoming events",
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE date_time > $1
		 ORDER BY date_time ASC, location ASC`,
		now,
	)
}

// DeleteByID removes an event. Events with registrations cannot be deleted.
func (r *EventRepository) DeleteByID(ctx context.Context, id int64) error {
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperror.ErrEventNotFound
		}
		return nil
	})
	return translateDelete("delete event", err)
}

func (r *EventRepository) query(ctx context.Context, op, sql string, args ...any) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		events, err = collectEvents(rows)
		return err
	})
	if err != nil {
		return nil, translate(op, err)
	}
	return events, nil
}

func collectEvents(rows pgx.Rows) ([]model.Event, error) {
	defer rows.Close()
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
