package service

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
)

const maxTextLength = 100

func normalizeEvent(req model.CreateEventRequest) model.CreateEventRequest {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	req.DateTime = req.DateTime.UTC()
	return req
}

func validateEvent(req model.CreateEventRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required, validation.RuneLength(1, maxTextLength)),
		validation.Field(&req.DateTime, validation.Required),
		validation.Field(&req.Location, validation.Required, validation.RuneLength(1, maxTextLength)),
		validation.Field(&req.Capacity, validation.Required, validation.Min(1), validation.Max(1000)),
	)
	return invalid("invalid event", err)
}

func normalizeUser(req model.CreateUserRequest) model.CreateUserRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return req
}

func validateUser(req model.CreateUserRequest) error {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, maxTextLength)),
		validation.Field(&req.Email, validation.Required, validation.RuneLength(1, maxTextLength), is.EmailFormat),
	)
	return invalid("invalid user", err)
}

func validateID(field string, id int64) error {
	if id <= 0 {
		return apperror.Invalid("invalid "+field, map[string]string{field: "must be a positive integer"})
	}
	return nil
}

// invalid converts ozzo-validation output into a validation apperror with
// one message per json field.
func invalid(msg string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for field, ferr := range verrs {
			fields[field] = ferr.Error()
		}
		return apperror.Invalid(msg, fields)
	}
	return fmt.Errorf("validate: %w", err)
}
