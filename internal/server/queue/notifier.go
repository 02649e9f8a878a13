package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/hibiken/asynq"
)

// enqueuer is the part of *asynq.Client used here.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Notifier implements mailer.Notifier by enqueueing delivery tasks.
type Notifier struct {
	client   enqueuer
	maxRetry int
}

func NewNotifier(opt asynq.RedisConnOpt) *Notifier {
	return &Notifier{client: asynq.NewClient(opt), maxRetry: defaultMaxRetry}
}

func (n *Notifier) SendVerificationEmail(ctx context.Context, msg mailer.VerificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeVerificationEmail, body, asynq.Queue(queueName))
	if _, err := n.client.EnqueueContext(ctx, task, asynq.MaxRetry(n.maxRetry)); err != nil {
		return fmt.Errorf("enqueue verification email: %w", err)
	}
	return nil
}

func (n *Notifier) Close() error {
	return n.client.Close()
}
