package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
)

// Register prompts for a username, email and password and creates the
// account. The server mails a verification token to the address.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.WipeBytes(password)

	acc, err := a.api.Register(ctx, userName, email, password)
	if err != nil {
		return a.report(err, "")
	}
	return a.report(nil, fmt.Sprintf("Account %s created, check %s for the verification token", acc.Username, acc.Email))
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.WipeBytes(password)

	sess, err := a.api.Login(ctx, userName, password)
	if err != nil {
		return a.report(err, "")
	}
	a.userName = userName
	if sess.Token == "" {
		return a.report(nil, "Already logged in")
	}
	return a.report(nil, fmt.Sprintf("Logged in, session valid until %s", sess.ExpiresAt.Local().Format("2006-01-02 15:04")))
}

func (a *App) Renew(ctx context.Context) error {
	sess, err := a.api.Renew(ctx)
	if err != nil {
		return a.report(err, "")
	}
	return a.report(nil, fmt.Sprintf("Session renewed until %s", sess.ExpiresAt.Local().Format("2006-01-02 15:04")))
}

// Logout drops the session cookies on the server side and forgets the
// local user.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.userName = ""
	return a.report(err, "Logged out")
}
