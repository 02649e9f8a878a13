// Package accounts provides storage for user accounts: a PostgreSQL
// implementation over dbx.DBTX and an in-memory implementation with the
// same uniqueness guarantees.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// Constraint names declared by the accounts migration.
const (
	UsernameConstraint = "accounts_username_key"
	EmailConstraint    = "accounts_email_key"
)

// uniqueConstraints routes uniqueness failures to the conflict error.
var uniqueConstraints = dbx.ConstraintTable{
	UsernameConstraint: common.ErrorConflict,
	EmailConstraint:    common.ErrorConflict,
}

// Repository is the credential store used by the account service.
// Lookups of absent rows return common.ErrorNotFound; a write rejected by a
// uniqueness constraint returns an error matching common.ErrorConflict.
type Repository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, account *models.Account) error
	FindHashByUsername(ctx context.Context, username string) (uuid.UUID, string, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AccountView, error)

	// FindVerificationToken returns "" once the token has been consumed.
	FindVerificationToken(ctx context.Context, username string) (string, error)

	// SetVerified marks the account verified and clears its token, but only
	// while the stored token still equals token. Otherwise it returns
	// common.ErrorNotFound and changes nothing.
	SetVerified(ctx context.Context, username, token string) error

	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) (int64, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (int64, error)
}
