package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names declared in the migrations. Repositories match on these
// to translate violations into domain errors.
const (
	ConstraintUserEmail          = "users_email_key"
	ConstraintEventCapacity      = "events_capacity_check"
	ConstraintRegistrationPK     = "registrations_pkey"
	ConstraintRegistrationUserFK = "registrations_user_id_fkey"
	ConstraintRegistrationEvtFK  = "registrations_event_id_fkey"
)

// ErrTransient marks timeouts, connectivity failures and pool exhaustion.
// Callers may retry.
var ErrTransient = errors.New("transient store failure")

// ConstraintKind identifies the class of a violated constraint.
type ConstraintKind int

const (
	ConstraintUnique ConstraintKind = iota + 1
	ConstraintForeignKey
	ConstraintCheck
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintUnique:
		return "unique"
	case ConstraintForeignKey:
		return "foreign key"
	case ConstraintCheck:
		return "check"
	default:
		return "unknown"
	}
}

// ConstraintError reports a write rejected by a store-enforced rule.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint %q violated", e.Kind, e.Constraint)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Querier is the statement surface shared by pooled connections and
// transactions. Values are always passed as bound parameters.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Conn)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// Acquirer hands out pooled connections. *pgxpool.Pool satisfies it.
type Acquirer interface {
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
}

// DB executes statements against the pool with a bounded timeout per
// operation. Every connection it acquires is released before it returns.
type DB struct {
	pool    Acquirer
	timeout time.Duration
}

// New wraps pool. timeout bounds each WithConn/WithTx call, including the
// wait for a free connection.
func New(pool Acquirer, timeout time.Duration) *DB {
	return &DB{pool: pool, timeout: timeout}
}

// WithConn acquires a connection, runs fn and releases the connection on
// every exit path. Store errors returned by fn are translated.
func (db *DB) WithConn(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	return db.acquire(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		return fn(ctx, conn)
	})
}

// WithTx runs fn inside a READ COMMITTED transaction on a single pooled
// connection, whatever the server's default_transaction_isolation is. Each
// statement sees rows committed before it started, which row-lock callers
// depend on. The transaction commits when fn returns nil and rolls back
// otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return db.acquire(ctx, func(ctx context.Context, conn *pgxpool.Conn) error {
		tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		// Rollback after Commit is a no-op.
		defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

		if err := fn(ctx, tx); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return nil
	})
}

func (db *DB) acquire(ctx context.Context, fn func(ctx context.Context, conn *pgxpool.Conn) error) error {
	ctx, cancel := context.WithTimeout(ctx, db.timeout)
	defer cancel()

	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return Translate(fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Release()

	return Translate(fn(ctx, conn))
}

// Translate maps pgx/pgconn failures onto ConstraintError or ErrTransient.
// Any other error, including pgx.ErrNoRows and domain errors, is returned
// unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConstraintError
	if errors.As(err, &ce) || errors.Is(err, ErrTransient) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &ConstraintError{Kind: ConstraintUnique, Constraint: pgErr.ConstraintName, Err: err}
		case "23503":
			return &ConstraintError{Kind: ConstraintForeignKey, Constraint: pgErr.ConstraintName, Err: err}
		case "23514":
			return &ConstraintError{Kind: ConstraintCheck, Constraint: pgErr.ConstraintName, Err: err}
		}
		if isTransientCode(pgErr.Code) {
			return fmt.Errorf("%w: %w", ErrTransient, err)
		}
		return err
	}

	var connectErr *pgconn.ConnectError
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		pgconn.Timeout(err) ||
		errors.As(err, &connectErr) ||
		pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}

// isTransientCode reports SQLSTATEs worth retrying: connection exceptions,
// serialization failures, deadlocks, cancellations and resource exhaustion.
func isTransientCode(code string) bool {
	switch code {
	case "40001", "40P01", "57014", "57P01", "53300":
		return true
	}
	return len(code) == 5 && code[:2] == "08"
}
