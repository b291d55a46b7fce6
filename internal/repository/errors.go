// Package repository implements all database queries for the event
// registration system. It uses pgx directly (no ORM) and translates store
// failures into apperror values at this boundary.
package repository

import (
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/database"
)

// translate maps gateway errors onto the domain taxonomy. Errors that are
// already domain errors pass through; anything unrecognised is wrapped with
// op and surfaces as Internal.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	if errors.Is(err, database.ErrTransient) {
		return apperror.Wrap(apperror.CodeUnavailable, "store unavailable, retry later", err)
	}

	var ce *database.ConstraintError
	if errors.As(err, &ce) {
		switch ce.Constraint {
		case database.ConstraintUserEmail:
			return apperror.Wrap(apperror.CodeEmailTaken, "email already exists", err)
		case database.ConstraintRegistrationPK:
			return apperror.Wrap(apperror.CodeAlreadyRegistered, "already registered", err)
		case database.ConstraintRegistrationUserFK:
			return apperror.Wrap(apperror.CodeUserNotFound, "user not found", err)
		case database.ConstraintRegistrationEvtFK:
			return apperror.Wrap(apperror.CodeEventNotFound, "event not found", err)
		case database.ConstraintEventCapacity:
			e := apperror.Invalid("invalid event", map[string]string{"capacity": "must be between 1 and 1000"})
			e.Cause = err
			return e
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// translateDelete is translate for deletes of a referenced row, where a
// foreign-key violation means registrations still point at it.
func translateDelete(op string, err error) error {
	var ce *database.ConstraintError
	if errors.As(err, &ce) && ce.Kind == database.ConstraintForeignKey {
		return apperror.Wrap(apperror.CodeStillReferenced, "resource still has registrations", err)
	}
	return translate(op, err)
}
