package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. It enforces the same
// username and email uniqueness as the database schema and reports
// violations with the same constraint names.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.Account
	byName  map[string]uuid.UUID
	byEmail map[string]uuid.UUID
	nowFunc func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]*models.Account),
		byName:  make(map[string]uuid.UUID),
		byEmail: make(map[string]uuid.UUID),
		nowFunc: time.Now,
	}
}

func (r *MemoryRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[username]
	return ok, nil
}

func (r *MemoryRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *MemoryRepository) Create(_ context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[a.Username]; ok {
		return &dbx.ConstraintError{Constraint: UsernameConstraint, Err: common.ErrorConflict}
	}
	if _, ok := r.byEmail[a.Email]; ok {
		return &dbx.ConstraintError{Constraint: EmailConstraint, Err: common.ErrorConflict}
	}

	a.CreatedAt = r.nowFunc().UTC()
	stored := *a
	r.byID[a.ID] = &stored
	r.byName[a.Username] = a.ID
	r.byEmail[a.Email] = a.ID
	return nil
}

func (r *MemoryRepository) FindHashByUsername(_ context.Context, username string) (uuid.UUID, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.lookupName(username)
	if !ok {
		return uuid.Nil, "", common.ErrorNotFound
	}
	return a.ID, a.PasswordHash, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*models.AccountView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.View(), nil
}

func (r *MemoryRepository) FindVerificationToken(_ context.Context, username string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.lookupName(username)
	if !ok {
		return "", common.ErrorNotFound
	}
	return a.VerificationToken, nil
}

func (r *MemoryRepository) SetVerified(_ context.Context, username, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.lookupName(username)
	if !ok || a.VerificationToken == "" || a.VerificationToken != token {
		return common.ErrorNotFound
	}
	a.Verified = true
	a.VerificationToken = ""
	return nil
}

func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return 0, nil
	}
	a.PasswordHash = hash
	return 1, nil
}

func (r *MemoryRepository) DeleteByID(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return 0, nil
	}
	delete(r.byID, id)
	delete(r.byName, a.Username)
	delete(r.byEmail, a.Email)
	return 1, nil
}

// lookupName expects r.mu to be held.
func (r *MemoryRepository) lookupName(username string) (*models.Account, bool) {
	id, ok := r.byName[username]
	if !ok {
		return nil, false
	}
	a, ok := r.byID[id]
	return a, ok
}
