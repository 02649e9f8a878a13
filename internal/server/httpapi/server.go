// Package httpapi exposes the account service over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const shutdownTimeout = 5 * time.Second

// Accounts is the part of services.AccountService the handlers use.
type Accounts interface {
	Create(ctx context.Context, username, email, password string) (*models.AccountView, error)
	Authenticate(ctx context.Context, username, password string) (*services.Session, error)
	RenewSession(ctx context.Context, accountID uuid.UUID) (*services.Session, error)
	ResolveSession(token string) (uuid.UUID, error)
	CheckCSRF(ambient, claimed string) bool
	Verify(ctx context.Context, username, token string) error
	ChangePassword(ctx context.Context, accountID uuid.UUID, newPassword string) error
	Delete(ctx context.Context, accountID uuid.UUID) error
	Get(ctx context.Context, accountID uuid.UUID) (*models.AccountView, error)
	CheckUsernameAvailable(ctx context.Context, username string) (bool, error)
	CheckEmailAvailable(ctx context.Context, email string) (bool, error)
	CSRFTTL() time.Duration
}

// Options configures the HTTP server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	SecureCookies  bool
}

type Server struct {
	accounts      Accounts
	logger        logging.Logger
	secureCookies bool
	engine        *gin.Engine
	srv           *http.Server
}

func NewServer(accounts Accounts, l logging.Logger, opts Options) *Server {
	s := &Server{
		accounts:      accounts,
		logger:        l.With("module", "http"),
		secureCookies: opts.SecureCookies,
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.requestLogger())
	if len(opts.AllowedOrigins) > 0 {
		s.engine.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	}
	s.routes()

	s.srv = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ParseOrigins splits a comma-separated origin list, dropping blanks.
func ParseOrigins(list string) []string {
	var out []string
	for _, o := range strings.Split(list, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = origins
	c.AllowCredentials = true
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
		common.CSRFHeaderName,
	}
	return c
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	return serve(ctx, s.srv, s.logger)
}

func serve(ctx context.Context, srv *http.Server, l logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		l.Info(ctx, "Starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info(ctx, "Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
