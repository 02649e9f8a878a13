package dbx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var errTaken = errors.New("taken")

func TestTranslateConstraint(t *testing.T) {
	table := ConstraintTable{"accounts_username_key": errTaken}

	tests := []struct {
		name       string
		in         error
		wantMapped bool
	}{
		{"known unique constraint", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_username_key"}, true},
		{"wrapped pg error", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_username_key"}), true},
		{"unknown constraint", &pgconn.PgError{Code: "23505", ConstraintName: "other_key"}, false},
		{"other sqlstate", &pgconn.PgError{Code: "23503", ConstraintName: "accounts_username_key"}, false},
		{"plain error", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateConstraint(tt.in, table)
			if tt.wantMapped {
				assert.ErrorIs(t, got, errTaken)
				var ce *ConstraintError
				if assert.ErrorAs(t, got, &ce) {
					assert.Equal(t, "accounts_username_key", ce.Constraint)
				}
				return
			}
			assert.Same(t, tt.in, got)
		})
	}
}
