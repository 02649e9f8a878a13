package dbx

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE PostgreSQL reports for UNIQUE and
// PRIMARY KEY violations.
const uniqueViolation = "23505"

// ConstraintTable maps constraint names to the error a repository should
// surface when that constraint rejects a write.
type ConstraintTable map[string]error

// ConstraintError is returned for a recognised constraint violation.
// It unwraps to the mapped domain error.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %s violated: %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// TranslateConstraint inspects err for a PostgreSQL unique violation whose
// constraint name is present in table. A match is returned as a
// *ConstraintError; anything else is returned unchanged.
func TranslateConstraint(err error, table ConstraintTable) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	mapped, ok := table[pgErr.ConstraintName]
	if !ok {
		return err
	}
	return &ConstraintError{Constraint: pgErr.ConstraintName, Err: mapped}
}
