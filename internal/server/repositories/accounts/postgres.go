package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`, username)
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

// Create inserts the account and fills in CreatedAt from the database.
func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) error {
	query :=
		`INSERT INTO accounts (id, username, email, password_hash, verification_token, verified)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.Username, a.Email, a.PasswordHash, nullable(a.VerificationToken), a.Verified,
	).Scan(&a.CreatedAt)
	if err != nil {
		var ce *dbx.ConstraintError
		if translated := dbx.TranslateConstraint(err, uniqueConstraints); errors.As(translated, &ce) {
			return translated
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindHashByUsername(ctx context.Context, username string) (uuid.UUID, string, error) {
	query :=
		`SELECT id, password_hash FROM accounts
		 WHERE username = $1`

	var (
		id   uuid.UUID
		hash string
	)
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&id, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, "", common.ErrorNotFound
		}
		return uuid.Nil, "", fmt.Errorf("db error: %w", err)
	}
	return id, hash, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.AccountView, error) {
	query :=
		`SELECT id, username, email, verified, created_at FROM accounts
		 WHERE id = $1`

	v := &models.AccountView{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Username, &v.Email, &v.Verified, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) FindVerificationToken(ctx context.Context, username string) (string, error) {
	query :=
		`SELECT verification_token FROM accounts
		 WHERE username = $1`

	var token sql.NullString
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return token.String, nil
}

func (r *PostgresRepository) SetVerified(ctx context.Context, username, token string) error {
	query :=
		`UPDATE accounts SET verified = TRUE, verification_token = NULL
		 WHERE username = $1 AND verification_token = $2`

	n, err := r.execAffected(ctx, query, username, token)
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) (int64, error) {
	return r.execAffected(ctx, `UPDATE accounts SET password_hash = $1 WHERE id = $2`, hash, id)
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.execAffected(ctx, `DELETE FROM accounts WHERE id = $1`, id)
}

func (r *PostgresRepository) execAffected(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
