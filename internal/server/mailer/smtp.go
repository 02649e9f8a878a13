package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/jordan-wright/email"
)

// SMTPConfig describes the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	// SenderName and FromAddress form the From header: "SenderName <FromAddress>".
	SenderName  string
	FromAddress string

	PoolSize int

	// SendTimeout bounds a single delivery when ctx carries no deadline.
	SendTimeout time.Duration

	// VerificationBaseURL is the prefix of verification links.
	VerificationBaseURL string
}

// sender is the part of *email.Pool the notifier uses.
type sender interface {
	Send(e *email.Email, timeout time.Duration) error
	Close()
}

// SMTPNotifier sends mail through a fixed-size pool of SMTP connections.
type SMTPNotifier struct {
	cfg    SMTPConfig
	pool   sender
	logger logging.Logger
}

// newPool is a seam for tests.
var newPool = func(cfg SMTPConfig) (sender, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return email.NewPool(addr, cfg.PoolSize, auth)
}

func NewSMTPNotifier(cfg SMTPConfig, l logging.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.FromAddress == "" {
		return nil, errors.New("smtp host and from address are required")
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 10
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	pool, err := newPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("smtp pool: %w", err)
	}
	return &SMTPNotifier{cfg: cfg, pool: pool, logger: l.With("module", "mailer")}, nil
}

// SendVerificationEmail renders the verification template for msg and
// delivers it. The wait for a pooled connection and the send are bounded by
// the ctx deadline, or SendTimeout if ctx has none.
func (n *SMTPNotifier) SendVerificationEmail(ctx context.Context, msg VerificationMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	link := VerificationLink(n.cfg.VerificationBaseURL, msg.Username, msg.Token)
	body, err := renderVerification(msg.Username, link)
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	e := email.NewEmail()
	e.From = fmt.Sprintf("%s <%s>", n.cfg.SenderName, n.cfg.FromAddress)
	e.To = []string{msg.To}
	e.Subject = verificationSubject
	e.HTML = body

	timeout := n.cfg.SendTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}

	if err := n.pool.Send(e, timeout); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	n.logger.Debug(ctx, "verification email sent", "username", msg.Username)
	return nil
}

func (n *SMTPNotifier) Close() {
	n.pool.Close()
}
