// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the stored credential record for one user.
type Account struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string

	// VerificationToken is empty once the address has been confirmed.
	VerificationToken string
	Verified          bool
	CreatedAt         time.Time
}

// View returns the public projection of the account.
func (a *Account) View() *AccountView {
	return &AccountView{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Verified:  a.Verified,
		CreatedAt: a.CreatedAt,
	}
}

// AccountView is what the API exposes about an account. It never carries
// the password digest or the verification token.
type AccountView struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}
