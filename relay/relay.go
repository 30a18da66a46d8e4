package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/glimte/intercept-go/emitter"
	"github.com/glimte/intercept-go/internal/reliability"
)

// Channel is the subset of *amqp.Channel used by the relay
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Relay publishes dispatched events to an exchange
type Relay struct {
	ctx            context.Context
	channel        Channel
	exchange       string
	retryPolicy    reliability.RetryPolicy
	publishTimeout time.Duration
	persistent     bool
	logger         *slog.Logger
}

// Option configures the Relay
type Option func(*Relay)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithRetryPolicy sets the policy applied to failed publishes
func WithRetryPolicy(policy reliability.RetryPolicy) Option {
	return func(r *Relay) {
		r.retryPolicy = policy
	}
}

// WithPublishTimeout bounds a publish including its retries
func WithPublishTimeout(timeout time.Duration) Option {
	return func(r *Relay) {
		r.publishTimeout = timeout
	}
}

// WithContext sets the context of publishes made by bound listeners.
// Cancelling it stops their in-flight retries.
func WithContext(ctx context.Context) Option {
	return func(r *Relay) {
		r.ctx = ctx
	}
}

// WithPersistent marks published messages as persistent
func WithPersistent(persistent bool) Option {
	return func(r *Relay) {
		r.persistent = persistent
	}
}

// New creates a relay publishing to exchange over ch
func New(ch Channel, exchange string, options ...Option) (*Relay, error) {
	if ch == nil {
		return nil, ErrNoChannel
	}

	r := &Relay{
		ctx:            context.Background(),
		channel:        ch,
		exchange:       exchange,
		retryPolicy:    reliability.NewExponentialBackoff(100*time.Millisecond, 2*time.Second, 2.0, 3),
		publishTimeout: 10 * time.Second,
		persistent:     true,
		logger:         slog.Default(),
	}

	for _, opt := range options {
		opt(r)
	}

	if r.ctx == nil {
		r.ctx = context.Background()
	}

	return r, nil
}

// Bind subscribes the relay to each event of d. The returned subscriptions
// can be passed to d.Off to stop relaying.
func (r *Relay) Bind(d emitter.Dispatcher, events ...string) []*emitter.Subscription {
	subs := make([]*emitter.Subscription, 0, len(events))
	for _, event := range events {
		event := event
		subs = append(subs, d.On(event, func(args ...any) {
			if err := r.Publish(r.ctx, event, args...); err != nil {
				r.logger.Error("failed to relay event",
					"event", event,
					"exchange", r.exchange,
					"error", err)

				if d.ListenerCount(emitter.EventError) > 0 {
					d.Emit(emitter.EventError, err)
				}
			}
		}))
	}
	return subs
}

// Publish wraps args in an envelope and publishes it with event as routing key
func (r *Relay) Publish(ctx context.Context, event string, args ...any) error {
	env := NewEnvelope(event, args)

	body, err := env.Marshal()
	if err != nil {
		return r.publishError(env, fmt.Errorf("failed to marshal envelope: %w", err))
	}

	msg := amqp.Publishing{
		ContentType: ContentType,
		MessageId:   env.ID,
		Timestamp:   env.Timestamp,
		Type:        event,
		Body:        body,
	}
	if r.persistent {
		msg.DeliveryMode = amqp.Persistent
	}

	ctx, cancel := context.WithTimeout(ctx, r.publishTimeout)
	defer cancel()

	err = reliability.Retry(ctx, r.retryPolicy, func() error {
		return r.channel.PublishWithContext(ctx, r.exchange, event, false, false, msg)
	})
	if err != nil {
		return r.publishError(env, err)
	}

	r.logger.Debug("event relayed",
		"event", event,
		"envelopeId", env.ID,
		"exchange", r.exchange)
	return nil
}

func (r *Relay) publishError(env *Envelope, err error) *PublishError {
	return &PublishError{
		Event:      env.Event,
		EnvelopeID: env.ID,
		Exchange:   r.exchange,
		Err:        err,
	}
}
