// Package services contains server-side business logic. AccountService
// orchestrates the account lifecycle: registration, email verification,
// login, session renewal, password change and deletion.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	ErrUsernameTaken      = fmt.Errorf("%w: username already taken", common.ErrorConflict)
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", common.ErrorConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", common.ErrorUnauthorized)
	ErrVerificationFailed = fmt.Errorf("%w: invalid verification token", common.ErrorForbidden)
)

// Database is satisfied by *sql.DB.
type Database interface {
	dbx.DBTX
	dbx.TxRunner
}

// Session is what a successful login or renewal hands back to the transport.
type Session struct {
	AccountID uuid.UUID
	Token     string
	ExpiresAt time.Time
	CSRF      auth.CSRFPair
}

// AccountService holds no per-request state and is safe for concurrent use.
type AccountService struct {
	db          Database
	repomanager repomanager.RepositoryManager
	hasher      *cryptox.PasswordHasher
	sessions    *auth.SessionCodec
	csrf        *auth.CSRFManager
	tokens      *auth.VerificationTokens
	notifier    mailer.Notifier
	mailTimeout time.Duration
	recorder    *metrics.Recorder
	logger      logging.Logger

	// dummyDigest is verified against when the username is unknown so both
	// failure paths cost one Argon2id evaluation.
	dummyDigest string
}

type Option func(*AccountService)

// WithHasher replaces the hasher built from the default parameters.
func WithHasher(h *cryptox.PasswordHasher) Option {
	return func(s *AccountService) { s.hasher = h }
}

func WithRecorder(r *metrics.Recorder) Option {
	return func(s *AccountService) { s.recorder = r }
}

// NewAccountService wires the service from server configuration.
func NewAccountService(db Database, m repomanager.RepositoryManager, cfg *config.Config, n mailer.Notifier, l logging.Logger, opts ...Option) (*AccountService, error) {
	sessions, err := auth.NewSessionCodec([]byte(cfg.SecretKey), cfg.SessionTokenValidityDuration)
	if err != nil {
		return nil, err
	}

	s := &AccountService{
		db:          db,
		repomanager: m,
		sessions:    sessions,
		csrf:        auth.NewCSRFManager(cfg.CSRFTokenValidityDuration),
		tokens:      auth.NewVerificationTokens(),
		notifier:    n,
		mailTimeout: cfg.MailTimeout,
		logger:      l.With("module", "accounts"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.hasher == nil {
		if s.hasher, err = cryptox.NewPasswordHasher(cryptox.DefaultHasherConfig()); err != nil {
			return nil, err
		}
	}
	if s.dummyDigest, err = s.hasher.Hash(uuid.NewString()); err != nil {
		return nil, fmt.Errorf("dummy digest: %w", err)
	}
	if s.mailTimeout <= 0 {
		s.mailTimeout = 10 * time.Second
	}
	return s, nil
}

// Create registers a new unverified account and sends the verification
// email. A failed email does not undo the registration.
func (s *AccountService) Create(ctx context.Context, username, email, password string) (view *models.AccountView, err error) {
	defer func() { s.recorder.Record(ctx, "create", err) }()

	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if err := validateRegistration(username, email, password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)

	taken, err := repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, s.internal(ctx, "username lookup", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}
	taken, err = repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, s.internal(ctx, "email lookup", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, s.internal(ctx, "password hashing", err)
	}
	token, err := s.tokens.Generate()
	if err != nil {
		return nil, s.internal(ctx, "verification token", err)
	}

	account := &models.Account{
		ID:                uuid.New(),
		Username:          username,
		Email:             email,
		PasswordHash:      digest,
		VerificationToken: token,
	}
	if err := repo.Create(ctx, account); err != nil {
		return nil, s.translateCreateError(ctx, err)
	}
	s.logger.Info(ctx, "account created", "account_id", account.ID)

	s.sendVerification(ctx, account)
	return account.View(), nil
}

func (s *AccountService) sendVerification(ctx context.Context, a *models.Account) {
	ctx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()

	msg := mailer.VerificationMessage{To: a.Email, Username: a.Username, Token: a.VerificationToken}
	if err := s.notifier.SendVerificationEmail(ctx, msg); err != nil {
		s.logger.Warn(ctx, "verification email not sent", "account_id", a.ID, "error", err)
	}
}

// translateCreateError maps a uniqueness violation raised by the store,
// which happens when a concurrent registration wins the race after the
// pre-checks, onto the same errors the pre-checks return.
func (s *AccountService) translateCreateError(ctx context.Context, err error) error {
	var ce *dbx.ConstraintError
	if errors.As(err, &ce) && errors.Is(err, common.ErrorConflict) {
		if strings.Contains(ce.Constraint, "email") {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	if errors.Is(err, common.ErrorConflict) {
		return ErrUsernameTaken
	}
	return s.internal(ctx, "account insert", err)
}

// Authenticate checks the credentials and issues a session. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (sess *Session, err error) {
	defer func() { s.recorder.Record(ctx, "authenticate", err) }()

	username = strings.TrimSpace(username)
	id, digest, err := s.repomanager.Accounts(s.db).FindHashByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyDigest)
			return nil, ErrInvalidCredentials
		}
		return nil, s.internal(ctx, "credential lookup", err)
	}

	if !s.hasher.Verify(password, digest) {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(ctx, id)
}

// RenewSession issues a fresh session and CSRF pair for an account that is
// already authenticated. The account must still exist.
func (s *AccountService) RenewSession(ctx context.Context, accountID uuid.UUID) (sess *Session, err error) {
	defer func() { s.recorder.Record(ctx, "renew", err) }()

	if _, err := s.repomanager.Accounts(s.db).FindByID(ctx, accountID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, s.internal(ctx, "account lookup", err)
	}
	return s.issueSession(ctx, accountID)
}

func (s *AccountService) issueSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	token, expiresAt, err := s.sessions.Issue(id)
	if err != nil {
		return nil, s.internal(ctx, "session signing", err)
	}
	pair, err := s.csrf.Issue()
	if err != nil {
		return nil, s.internal(ctx, "csrf token", err)
	}
	return &Session{AccountID: id, Token: token, ExpiresAt: expiresAt, CSRF: pair}, nil
}

// ResolveSession returns the account a session token was issued for.
func (s *AccountService) ResolveSession(token string) (uuid.UUID, error) {
	return s.sessions.Validate(token)
}

// CheckCSRF compares the cookie and header copies of the CSRF token.
func (s *AccountService) CheckCSRF(ambient, claimed string) bool {
	return s.csrf.Validate(ambient, claimed)
}

// Verify consumes the verification token for username. A wrong token, an
// unknown username and an already used token all fail with Forbidden and
// leave the account unchanged. Of concurrent calls with the same token at
// most one succeeds.
func (s *AccountService) Verify(ctx context.Context, username, token string) (err error) {
	defer func() { s.recorder.Record(ctx, "verify", err) }()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		stored, err := repo.FindVerificationToken(ctx, username)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrVerificationFailed
			}
			return s.internal(ctx, "verification token lookup", err)
		}
		if !s.tokens.Matches(stored, token) {
			return ErrVerificationFailed
		}

		// the update re-checks the token, so a concurrent consume loses here
		if err := repo.SetVerified(ctx, username, stored); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrVerificationFailed
			}
			return s.internal(ctx, "mark verified", err)
		}
		s.logger.Info(ctx, "account verified", "username", username)
		return nil
	})
	if err != nil && !errors.Is(err, common.ErrorForbidden) && !errors.Is(err, common.ErrorInternal) {
		return s.internal(ctx, "verify transaction", err)
	}
	return err
}

// ChangePassword replaces the password of an authenticated account.
func (s *AccountService) ChangePassword(ctx context.Context, accountID uuid.UUID, newPassword string) (err error) {
	defer func() { s.recorder.Record(ctx, "change_password", err) }()

	if newPassword == "" {
		return fmt.Errorf("%w: password must not be empty", common.ErrorValidation)
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return s.internal(ctx, "password hashing", err)
	}

	n, err := s.repomanager.Accounts(s.db).UpdatePasswordHash(ctx, accountID, digest)
	if err != nil {
		return s.internal(ctx, "password update", err)
	}
	if n == 0 {
		return s.internal(ctx, "password update", errors.New("no rows affected"))
	}
	return nil
}

// Delete removes the account.
func (s *AccountService) Delete(ctx context.Context, accountID uuid.UUID) (err error) {
	defer func() { s.recorder.Record(ctx, "delete", err) }()

	n, err := s.repomanager.Accounts(s.db).DeleteByID(ctx, accountID)
	if err != nil {
		return s.internal(ctx, "account delete", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	s.logger.Info(ctx, "account deleted", "account_id", accountID)
	return nil
}

// Get returns the public view of the account.
func (s *AccountService) Get(ctx context.Context, accountID uuid.UUID) (*models.AccountView, error) {
	v, err := s.repomanager.Accounts(s.db).FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "account lookup", err)
	}
	return v, nil
}

// CheckUsernameAvailable is advisory: a later Create can still lose a race.
// The value is trimmed the same way Create trims it.
func (s *AccountService) CheckUsernameAvailable(ctx context.Context, username string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, fmt.Errorf("%w: username must not be empty", common.ErrorValidation)
	}
	taken, err := s.repomanager.Accounts(s.db).ExistsByUsername(ctx, username)
	if err != nil {
		return false, s.internal(ctx, "username lookup", err)
	}
	return !taken, nil
}

// CheckEmailAvailable is advisory: a later Create can still lose a race.
func (s *AccountService) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, fmt.Errorf("%w: email must not be empty", common.ErrorValidation)
	}
	taken, err := s.repomanager.Accounts(s.db).ExistsByEmail(ctx, email)
	if err != nil {
		return false, s.internal(ctx, "email lookup", err)
	}
	return !taken, nil
}

// CSRFTTL is the lifetime of CSRF cookies.
func (s *AccountService) CSRFTTL() time.Duration { return s.csrf.TTL() }

func (s *AccountService) internal(ctx context.Context, what string, err error) error {
	s.logger.Error(ctx, what+" failed", "error", err)
	return common.ErrorInternal
}

func validateRegistration(username, email, password string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username must not be empty", common.ErrorValidation)
	case strings.TrimSpace(password) == "":
		return fmt.Errorf("%w: password must not be empty", common.ErrorValidation)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}
	return nil
}
