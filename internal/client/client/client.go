package client

import (
	"context"
	"time"
)

// Account mirrors the server's public account view.
type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is returned by Login and Renew.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Register(ctx context.Context, username, email string, password []byte) (*Account, error)
	Login(ctx context.Context, username string, password []byte) (*Session, error)
	Renew(ctx context.Context) (*Session, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*Account, error)
	Verify(ctx context.Context, username, token string) error
	ChangePassword(ctx context.Context, password []byte) error
	Delete(ctx context.Context) error
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	EmailAvailable(ctx context.Context, email string) (bool, error)
}
