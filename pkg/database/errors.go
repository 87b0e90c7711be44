package database

import (
	"github.com/lib/pq"

	"github.com/dayflow/dayflow-backend/pkg/errors"
)

// MapPQError translates a PostgreSQL error, possibly wrapped, into an
// AppError. It returns nil for anything it does not recognise.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code.Name() {
	case "unique_violation":
		if pqErr.Constraint == "collections_pkey" {
			return errors.Conflict("collection already exists")
		}
		return errors.Conflict("a record with these values already exists")

	case "not_null_violation":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{col: "must not be empty"})

	case "invalid_text_representation":
		return errors.BadRequest("collection body is not valid JSON")

	case "serialization_failure", "deadlock_detected", "lock_not_available":
		return errors.Conflict("concurrent update, retry the request")

	default:
		return nil
	}
}
