// Package mailer delivers account emails. Notifier is the interface the
// account service depends on; SMTPNotifier renders the verification message
// and sends it through a pooled SMTP connection.
package mailer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// VerificationMessage carries what is needed to build a verification email.
type VerificationMessage struct {
	To       string `json:"to"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Notifier sends account emails. Implementations must honour ctx
// cancellation and deadlines.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, msg VerificationMessage) error
}

// VerificationLink joins base, username and token into the link the user
// follows to confirm their address.
func VerificationLink(base, username, token string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), url.PathEscape(username), url.PathEscape(token))
}
