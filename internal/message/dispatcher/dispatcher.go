// Package dispatcher sweeps the message queue and routes each message to the
// processor registered for its type.
//
// Each message is handled in its own transaction. A processor that returns
// COMPLETED has its message deleted in that transaction; one that returns
// ERROR keeps the message for the next sweep but its changes still commit.
// Any error rolls the transaction back and the sweep moves on.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"claimflow/internal/message/metrics"
	"claimflow/internal/message/models"
	"claimflow/pkg/platform/tx"
	"claimflow/pkg/requestcontext"
)

var (
	// ErrNoProcessor means a message type has nothing to handle it. The
	// registry is incomplete, which is a deployment bug.
	ErrNoProcessor = errors.New("no processor registered for message type")
	// ErrInvalidStatus means a processor returned a status the dispatcher
	// cannot act on.
	ErrInvalidStatus = errors.New("invalid message status")
)

// Processor handles messages of one type.
type Processor interface {
	MessageType() models.MessageType
	Process(ctx context.Context, msg *models.Message) (models.MessageStatus, error)
}

// MessageStore is the queue the dispatcher drains.
type MessageStore interface {
	FindPending(ctx context.Context, t models.MessageType) ([]*models.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByType(ctx context.Context) (map[models.MessageType]int, error)
}

// SweepResult counts outcomes per message type.
type SweepResult struct {
	Completed map[models.MessageType]int
	Errored   map[models.MessageType]int
}

func newSweepResult() SweepResult {
	return SweepResult{
		Completed: make(map[models.MessageType]int),
		Errored:   make(map[models.MessageType]int),
	}
}

// Total is the number of messages the sweep looked at.
func (r SweepResult) Total() int {
	n := 0
	for _, c := range r.Completed {
		n += c
	}
	for _, c := range r.Errored {
		n += c
	}
	return n
}

type Dispatcher struct {
	store      MessageStore
	tx         tx.Runner
	processors map[models.MessageType]Processor
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New builds a dispatcher. Every message type must have exactly one
// processor.
func New(store MessageStore, runner tx.Runner, processors []Processor, opts ...Option) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("message store is required")
	}
	if runner == nil {
		return nil, errors.New("transaction runner is required")
	}
	registry := make(map[models.MessageType]Processor, len(processors))
	for _, p := range processors {
		t := p.MessageType()
		if _, dup := registry[t]; dup {
			return nil, fmt.Errorf("duplicate processor for %s", t)
		}
		registry[t] = p
	}
	for _, t := range models.MessageTypes {
		if _, ok := registry[t]; !ok {
			return nil, fmt.Errorf("%s: %w", t, ErrNoProcessor)
		}
	}

	d := &Dispatcher{
		store:      store,
		tx:         runner,
		processors: registry,
		logger:     slog.Default(),
		tracer:     otel.Tracer("claimflow/message"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ProcessAll sweeps every message type in order. It stops early when ctx is
// done, returning what it managed so far alongside ctx's error.
func (d *Dispatcher) ProcessAll(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	defer func() { d.metrics.ObserveSweep(time.Since(start)) }()

	result := newSweepResult()
	for _, t := range models.MessageTypes {
		if err := d.processType(ctx, t, result); err != nil {
			return result, err
		}
	}
	d.recordPending(ctx)

	if n := result.Total(); n > 0 {
		d.logger.InfoContext(ctx, "message sweep finished",
			slog.Int("processed", n),
			slog.Any("completed", result.Completed),
			slog.Any("errored", result.Errored),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return result, nil
}

func (d *Dispatcher) processType(ctx context.Context, t models.MessageType, result SweepResult) error {
	pending, err := d.store.FindPending(ctx, t)
	if err != nil {
		return fmt.Errorf("find pending %s messages: %w", t, err)
	}
	if len(pending) == 0 {
		return nil
	}
	processor, ok := d.processors[t]
	if !ok {
		d.logger.ErrorContext(ctx, "pending messages have no processor",
			slog.String("message_type", string(t)),
			slog.Int("pending", len(pending)),
		)
		return fmt.Errorf("%s: %w", t, ErrNoProcessor)
	}

	for _, msg := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		status := d.processMessage(ctx, processor, msg)
		if status == models.MessageStatusCompleted {
			result.Completed[t]++
		} else {
			result.Errored[t]++
		}
		d.metrics.IncrementProcessed(string(t), string(status))
	}
	return nil
}

// processMessage runs one message through its processor. Whatever goes
// wrong, the outcome is reported as a status so the sweep can continue.
func (d *Dispatcher) processMessage(ctx context.Context, processor Processor, msg *models.Message) models.MessageStatus {
	ctx = requestcontext.WithMessageID(ctx, msg.ID.String())
	ctx, span := d.tracer.Start(ctx, "message.process", trace.WithAttributes(
		attribute.String("message.id", msg.ID.String()),
		attribute.String("message.type", string(msg.Type)),
	))
	defer span.End()

	logger := d.logger.With(
		slog.String("message_id", msg.ID.String()),
		slog.String("message_type", string(msg.Type)),
	)

	var status models.MessageStatus
	err := d.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		status, err = processor.Process(txCtx, msg)
		if err != nil {
			return err
		}
		switch status {
		case models.MessageStatusCompleted:
			return d.store.Delete(txCtx, msg.ID)
		case models.MessageStatusError:
			return nil
		default:
			return fmt.Errorf("message %s returned %q: %w", msg.ID, status, ErrInvalidStatus)
		}
	})

	switch {
	case errors.Is(err, ErrInvalidStatus):
		logger.ErrorContext(ctx, "processor returned an invalid status", slog.String("status", string(status)))
	case err != nil:
		logger.WarnContext(ctx, "message processing failed", slog.Any("error", err))
	case status == models.MessageStatusError:
		logger.WarnContext(ctx, "message kept for retry")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "message processing failed")
		return models.MessageStatusError
	}
	span.SetAttributes(attribute.String("message.status", string(status)))
	return status
}

func (d *Dispatcher) recordPending(ctx context.Context) {
	if d.metrics == nil {
		return
	}
	counts, err := d.store.CountByType(ctx)
	if err != nil {
		d.logger.WarnContext(ctx, "count pending messages", slog.Any("error", err))
		return
	}
	for _, t := range models.MessageTypes {
		d.metrics.SetPending(string(t), counts[t])
	}
}
