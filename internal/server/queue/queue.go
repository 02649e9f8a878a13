// Package queue moves verification-email delivery off the request path.
// Notifier enqueues an asynq task; Worker consumes it and hands the message
// to an SMTP-backed mailer.Notifier, retrying failed deliveries.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

const (
	TypeVerificationEmail = "email:verification"
	queueName             = "mail"
	defaultMaxRetry       = 5
)

// ParseRedisURL turns a redis:// URL into asynq connection options.
func ParseRedisURL(raw string) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return opt, nil
}

// Pinger reports whether the Redis instance behind the queue is reachable.
type Pinger struct {
	client *redis.Client
}

func NewPinger(raw string) (*Pinger, error) {
	opt, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &Pinger{client: redis.NewClient(opt)}, nil
}

func (p *Pinger) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.client.Ping(ctx).Err()
}

func (p *Pinger) Close() error {
	return p.client.Close()
}
