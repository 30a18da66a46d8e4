package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	json "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"

	"github.com/glimte/intercept-go/emitter"
	"github.com/glimte/intercept-go/interceptors"
	"github.com/glimte/intercept-go/internal/reliability"
	"github.com/glimte/intercept-go/monitor"
	"github.com/glimte/intercept-go/relay"
)

// pipeline turns input lines into intercepted dispatches that are relayed
type pipeline struct {
	emitter   *interceptors.Emitter
	relay     *relay.Relay
	chain     []interceptors.Interceptor
	relayAll  bool
	bound     map[string]bool
	logger    *slog.Logger
	delivered atomic.Int64
	failed    atomic.Int64
}

func newPipeline(ctx context.Context, cfg config, ch relay.Channel, reg prometheus.Registerer, logger *slog.Logger) (*pipeline, error) {
	collector, err := monitor.NewPrometheusCollector(reg, monitor.WithNamespace("intercept_relay"))
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	r, err := relay.New(ch, cfg.exchange,
		relay.WithLogger(logger),
		relay.WithContext(ctx),
		relay.WithRetryPolicy(reliability.NewExponentialBackoff(100*time.Millisecond, 2*time.Second, 2.0, cfg.retries)))
	if err != nil {
		return nil, err
	}

	tracer := otel.Tracer("intercept-relay")
	p := &pipeline{
		emitter:   interceptors.New(interceptors.WithLogger(logger), interceptors.WithMaxInterceptors(cfg.maxInterceptors)),
		relay:     r,
		relayAll:  len(cfg.events) == 0,
		bound:     make(map[string]bool),
		logger:    logger,
		chain: []interceptors.Interceptor{
			interceptors.NewTracingInterceptor(
				interceptors.NewMetricsInterceptor(interceptors.NewLoggingInterceptor(logger), collector),
				tracer),
		},
	}

	p.emitter.On(emitter.EventError, func(args ...any) {
		p.failed.Add(1)
		logger.Error("event not relayed", "error", args[0])
	})

	for _, event := range cfg.events {
		if err := p.bind(event); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// bind wires the interceptor chain and the relay for event
func (p *pipeline) bind(event string) error {
	if p.bound[event] {
		return nil
	}

	for _, interceptor := range p.chain {
		if err := p.emitter.Intercept(event, interceptor); err != nil {
			return fmt.Errorf("failed to intercept %s: %w", event, err)
		}
	}
	p.relay.Bind(p.emitter, event)
	p.emitter.On(event, func(args ...any) { p.delivered.Add(1) })
	p.bound[event] = true
	return nil
}

// consume dispatches every line of in until EOF or ctx is done
func (p *pipeline) consume(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if err := p.handle(line); err != nil {
				p.logger.Warn("skipping line", "line", line, "error", err)
			}
		}
	}
}

// handle dispatches a single input line
func (p *pipeline) handle(line string) error {
	event, args := parseLine(line)
	if event == "" {
		return nil
	}

	if !p.bound[event] {
		if !p.relayAll {
			p.logger.Debug("event not selected", "event", event)
			return nil
		}
		if err := p.bind(event); err != nil {
			return err
		}
	}

	p.emitter.Emit(event, args...)
	return nil
}

// parseLine splits "<event> [payload]". A JSON array payload becomes the
// argument list, any other JSON value a single argument, and text that is
// not JSON is passed as a string.
func parseLine(line string) (string, []any) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", nil
	}

	event, payload, _ := strings.Cut(line, " ")
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return event, nil
	}

	var value any
	if err := json.UnmarshalFromString(payload, &value); err != nil {
		return event, []any{payload}
	}
	if list, ok := value.([]any); ok {
		return event, list
	}
	return event, []any{value}
}

// logChannel stands in for a broker channel in dry-run mode
type logChannel struct {
	logger *slog.Logger
}

func (c *logChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.logger.Info("dry run publish",
		"exchange", exchange,
		"routingKey", key,
		"messageId", msg.MessageId,
		"body", string(msg.Body))
	return nil
}
