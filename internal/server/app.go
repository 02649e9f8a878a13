// Package server initializes and runs the gophauth server: it opens the
// database, applies migrations, wires mail delivery and the account service,
// and runs the HTTP API, the gRPC health endpoint and, when configured, the
// ops metrics listener and the mail queue worker until a termination signal
// arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/queue"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	smtp     *mailer.SMTPNotifier
	queue    *queue.Notifier
	worker   *queue.Worker
	pinger   *queue.Pinger
	metrics  *metrics.Provider
	accounts *services.AccountService
}

func NewApp(ctx context.Context, c *config.Config) (_ *App, err error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	app := &App{config: c, logger: logger, metrics: metrics.NewProvider()}
	defer func() {
		if err != nil {
			app.close(ctx)
		}
	}()

	app.db, err = repomanager.OpenDB(ctx, c.DatabaseDSN, c.DatabaseMaxConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err = rm.RunMigrations(ctx, app.db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app.smtp, err = mailer.NewSMTPNotifier(mailer.SMTPConfig{
		Host:                c.MailHost,
		Port:                c.MailPort,
		Username:            c.MailUsername,
		Password:            c.MailPassword,
		SenderName:          c.MailSender,
		FromAddress:         c.MailFrom,
		PoolSize:            c.MailPoolSize,
		SendTimeout:         c.MailTimeout,
		VerificationBaseURL: c.VerificationBaseURL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	var notifier mailer.Notifier = app.smtp
	if c.QueueRedisURL != "" {
		opt, perr := queue.ParseRedisURL(c.QueueRedisURL)
		if perr != nil {
			return nil, fmt.Errorf("queue init error: %w", perr)
		}
		if app.pinger, err = queue.NewPinger(c.QueueRedisURL); err != nil {
			return nil, fmt.Errorf("queue init error: %w", err)
		}
		app.queue = queue.NewNotifier(opt)
		app.worker = queue.NewWorker(opt, app.smtp, c.MailTimeout, logger)
		notifier = app.queue
	}

	rec, err := metrics.NewRecorder(app.metrics.Meter())
	if err != nil {
		return nil, err
	}

	app.accounts, err = services.NewAccountService(app.db, rm, c, notifier, logger, services.WithRecorder(rec))
	if err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) probes() []gs.Probe {
	p := []gs.Probe{{Name: "database", Check: app.db.PingContext}}
	if app.pinger != nil {
		p = append(p, gs.Probe{Name: "queue", Check: app.pinger.Ping})
	}
	return p
}

// runComponent runs one long-lived component; a failure stops the others.
func (app *App) runComponent(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "component failed", "component", name, "error", err)
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	httpServer := httpapi.NewServer(app.accounts, app.logger, httpapi.Options{
		Addr:           app.config.HTTPAddr,
		AllowedOrigins: httpapi.ParseOrigins(app.config.CORSAllowedOrigins),
		SecureCookies:  app.config.SecureCookies,
	})
	grpcServer := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.probes()...)

	components := map[string]func(context.Context) error{
		"http": httpServer.Run,
		"grpc": grpcServer.Run,
	}
	if app.worker != nil {
		components["mail_worker"] = app.worker.Run
	}
	if app.config.MetricsAddr != "" {
		components["ops_http"] = httpapi.NewOpsServer(app.config.MetricsAddr, app.metrics, app.logger).Run
	}

	var wg sync.WaitGroup
	for name, run := range components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runComponent(ctx, cancelFunc, name, run)
		}()
	}

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.queue != nil {
		if err := app.queue.Close(); err != nil {
			app.logger.Warn(ctx, "queue client close", "error", err)
		}
	}
	if app.pinger != nil {
		if err := app.pinger.Close(); err != nil {
			app.logger.Warn(ctx, "redis close", "error", err)
		}
	}
	if app.smtp != nil {
		app.smtp.Close()
	}
	if app.metrics != nil {
		if err := app.metrics.Shutdown(ctx); err != nil {
			app.logger.Warn(ctx, "metrics shutdown", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(ctx, "db close", "error", err)
		}
	}
}
