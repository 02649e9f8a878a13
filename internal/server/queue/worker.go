package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/hibiken/asynq"
)

// Worker delivers queued verification emails through delivery.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	delivery mailer.Notifier
	timeout  time.Duration
	logger   logging.Logger
}

func NewWorker(opt asynq.RedisConnOpt, delivery mailer.Notifier, sendTimeout time.Duration, l logging.Logger) *Worker {
	w := &Worker{
		server: asynq.NewServer(opt, asynq.Config{
			Concurrency: 4,
			Queues:      map[string]int{queueName: 1},
		}),
		mux:      asynq.NewServeMux(),
		delivery: delivery,
		timeout:  sendTimeout,
		logger:   l.With("module", "mail_worker"),
	}
	w.mux.HandleFunc(TypeVerificationEmail, w.handleVerification)
	return w
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.logger.Info(ctx, "Starting mail worker")

	<-ctx.Done()
	w.logger.Info(ctx, "Stopping mail worker...")
	w.server.Shutdown()
	return nil
}

func (w *Worker) handleVerification(ctx context.Context, task *asynq.Task) error {
	var msg mailer.VerificationMessage
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		// a payload that cannot be decoded will never succeed
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if msg.To == "" || msg.Username == "" || msg.Token == "" {
		return fmt.Errorf("incomplete verification payload: %w", asynq.SkipRetry)
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	if err := w.delivery.SendVerificationEmail(ctx, msg); err != nil {
		w.logger.Warn(ctx, "verification email delivery failed", "username", msg.Username, "error", err)
		return err
	}
	return nil
}
