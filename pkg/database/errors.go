package database

import (
	stderrors "errors"
	"strings"

	"github.com/lib/pq"
	"github.com/petspot/petspot-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		if strings.Contains(pqErr.Constraint, "microchip") {
			return errors.DuplicateMicrochip()
		}
		return errors.Conflict("a record with these values already exists")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.FieldInvalid(col, "must not be empty")

	default:
		return nil
	}
}

// mapCheckConstraint maps CHECK constraint names to the request field they guard.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "status_valid"):
		return errors.FieldInvalid("status", "must be one of: MISSING, FOUND")
	case strings.Contains(constraint, "sex_valid"):
		return errors.FieldInvalid("sex", "must be one of: MALE, FEMALE, UNKNOWN")
	case strings.Contains(constraint, "latitude_range"):
		return errors.FieldInvalid("locationLatitude", "must be between -90 and 90")
	case strings.Contains(constraint, "longitude_range"):
		return errors.FieldInvalid("locationLongitude", "must be between -180 and 180")
	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}
