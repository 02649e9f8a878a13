package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
)

// Verify prompts for a username and the mailed token.
func (a *App) Verify(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	token, err := getSimpleText(a.reader, "Enter verification token", a.out)
	if err != nil {
		return err
	}
	return a.report(a.api.Verify(ctx, userName, token), "Email verified")
}

func (a *App) Available(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	free, err := a.api.UsernameAvailable(ctx, userName)
	if err != nil {
		return a.report(err, "")
	}
	if free {
		return a.report(nil, fmt.Sprintf("%s is available", userName))
	}
	return a.report(nil, fmt.Sprintf("%s is taken", userName))
}

func (a *App) Me(ctx context.Context) error {
	acc, err := a.api.Me(ctx)
	if err != nil {
		return a.report(err, "")
	}
	status := "unverified"
	if acc.Verified {
		status = "verified"
	}
	return a.report(nil, fmt.Sprintf("%s <%s> %s, created %s", acc.Username, acc.Email, status, acc.CreatedAt.Local().Format("2006-01-02")))
}

func (a *App) ChangePassword(ctx context.Context) error {
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer cryptox.WipeBytes(password)

	return a.report(a.api.ChangePassword(ctx, password), "Password changed")
}

// Delete removes the account after confirmation.
func (a *App) Delete(ctx context.Context) error {
	if !confirm(a.reader, "Delete account "+a.userName+"?", a.out) {
		return a.report(nil, "Cancelled")
	}
	if err := a.api.Delete(ctx); err != nil {
		return a.report(err, "")
	}
	a.userName = ""
	return a.report(nil, "Account deleted")
}
