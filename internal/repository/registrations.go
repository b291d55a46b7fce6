package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/database"
	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
)

// AdmissionTx is the view of an open admission transaction. It holds an
// exclusive lock on one event row until the transaction ends, so every
// check made through it is stable until the insert commits.
type AdmissionTx interface {
	// Event returns the locked event.
	Event() model.Event
	// Exists reports whether userID is already registered for the event.
	Exists(ctx context.Context, userID int64) (bool, error)
	// Count returns the number of registrations for the event.
	Count(ctx context.Context) (int, error)
	// Insert registers userID for the event.
	Insert(ctx context.Context, userID int64) (*model.Registration, error)
}

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *database.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *database.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Admit runs fn inside a transaction that holds SELECT ... FOR UPDATE on the
// event row. The transaction commits only when fn returns nil.
//
// A plain read-then-insert lets two requests both observe count < capacity
// and both insert. Taking the row lock first makes every admission for the
// same event queue behind the previous one; under READ COMMITTED, which
// database.DB.WithTx pins regardless of the server default, each
// statement after the lock sees rows committed by earlier holders, so the
// count read through the AdmissionTx is exact. Admissions for different
// events lock different rows and do not wait on each other.
//
// A missing event yields apperror.ErrEventNotFound without calling fn.
func (r *RegistrationRepository) Admit(ctx context.Context, eventID int64, fn func(ctx context.Context, tx AdmissionTx) error) error {
	err := r.db.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		event, err := scanEvent(tx.QueryRow(ctx,
			`SELECT `+eventColumns+`
			 FROM events
			 WHERE id = $1
			 FOR UPDATE`,
			eventID,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.ErrEventNotFound
		}
		if err != nil {
			return err
		}
		return fn(ctx, &admissionTx{tx: tx, event: *event})
	})
	return translate("admit registration", err)
}

// Delete removes the (userID, eventID) registration or returns
// apperror.ErrRegistrationNotFound.
func (r *RegistrationRepository) Delete(ctx context.Context, userID, eventID int64) error {
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		tag, err := q.Exec(ctx,
			`DELETE FROM registrations WHERE user_id = $1 AND event_id = $2`,
			userID, eventID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperror.ErrRegistrationNotFound
		}
		return nil
	})
	return translate("delete registration", err)
}

// Count returns the number of registrations for eventID.
func (r *RegistrationRepository) Count(ctx context.Context, eventID int64) (int, error) {
	var n int
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx,
			`SELECT COUNT(*) FROM registrations WHERE event_id = $1`, eventID,
		).Scan(&n)
	})
	if err != nil {
		return 0, translate("count registrations", err)
	}
	return n, nil
}

// Exists reports whether userID is registered for eventID.
func (r *RegistrationRepository) Exists(ctx context.Context, userID, eventID int64) (bool, error) {
	var exists bool
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2)`,
			userID, eventID,
		).Scan(&exists)
	})
	if err != nil {
		return false, translate("check registration", err)
	}
	return exists, nil
}

// ListUsersByEvent returns the users registered for eventID in
// registration order.
func (r *RegistrationRepository) ListUsersByEvent(ctx context.Context, eventID int64) ([]model.User, error) {
	var users []model.User
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		rows, err := q.Query(ctx,
			`SELECT u.id, u.name, u.email
			 FROM users u
			 JOIN registrations r ON r.user_id = u.id
			 WHERE r.event_id = $1
			 ORDER BY r.registered_at ASC, u.id ASC`,
			eventID,
		)
		if err != nil {
			return err
		}
		users, err = collectUsers(rows)
		return err
	})
	if err != nil {
		return nil, translate("list registered users", err)
	}
	return users, nil
}

// ListEventsByUser returns the events userID is registered for, soonest first.
func (r *RegistrationRepository) ListEventsByUser(ctx context.Context, userID int64) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithConn(ctx, func(ctx context.Context, q database.Querier) error {
		rows, err := q.Query(ctx,
			`SELECT e.id, e.title, e.date_time, e.location, e.capacity
			 FROM events e
			 JOIN registrations r ON r.event_id = e.id
			 WHERE r.user_id = $1
			 ORDER BY e.date_time ASC, e.location ASC`,
			userID,
		)
		if err != nil {
			return err
		}
		events, err = collectEvents(rows)
		return err
	})
	if err != nil {
		return nil, translate("list user registrations", err)
	}
	return events, nil
}

type admissionTx struct {
	tx    pgx.Tx
	event model.Event
}

func (a *admissionTx) Event() model.Event { return a.event }

func (a *admissionTx) Exists(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := a.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2)`,
		userID, a.event.ID,
	).Scan(&exists)
	return exists, err
}

func (a *admissionTx) Count(ctx context.Context) (int, error) {
	var n int
	err := a.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`, a.event.ID,
	).Scan(&n)
	return n, err
}

// Insert relies on the primary key as the final duplicate guard: a row that
// already exists produces no RETURNING row and maps to
// apperror.ErrAlreadyRegistered without aborting the transaction.
func (a *admissionTx) Insert(ctx context.Context, userID int64) (*model.Registration, error) {
	reg := &model.Registration{UserID: userID, EventID: a.event.ID}
	err := a.tx.QueryRow(ctx,
		`INSERT INTO registrations (user_id, event_id)
		 VALUES ($1, $2)
		 ON CONFLICT ON CONSTRAINT registrations_pkey DO NOTHING
		 RETURNING registered_at`,
		userID, a.event.ID,
	).Scan(&reg.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.ErrAlreadyRegistered
	}
	if err != nil {
		return nil, database.Translate(err)
	}
	reg.RegisteredAt = reg.RegisteredAt.UTC()
	return reg, nil
}
