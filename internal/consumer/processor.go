// Package consumer reads outbox events from Kafka and hands them to handlers.
package consumer

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/VK-10/AI-fitness-App/internal/platform/events"
)

// Reader exposes the subset of kafka.Reader the processor needs.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives decoded messages.
type Handler interface {
	Handle(context.Context, Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(context.Context, Message) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Message is a decoded Kafka record produced by the outbox dispatcher.
type Message struct {
	Topic         string
	Partition     int
	Offset        int64
	Timestamp     time.Time
	EventType     string
	TenantID      string
	SchemaSubject string
	SchemaID      int
	Payload       json.RawMessage
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithFetchBackoff sets the pause after a failed fetch.
func WithFetchBackoff(d time.Duration) Option {
	return func(p *Processor) {
		p.fetchBackoff = d
	}
}

// WithHandlerRetries sets how many times a record is handled before it is
// dropped, and the pause between attempts.
func WithHandlerRetries(attempts int, backoff time.Duration) Option {
	return func(p *Processor) {
		if attempts > 0 {
			p.maxAttempts = attempts
		}
		p.retryBackoff = backoff
	}
}

// Processor pulls messages from Kafka, decodes them and dispatches to a Handler.
type Processor struct {
	reader       Reader
	handler      Handler
	logger       *log.Logger
	fetchBackoff time.Duration
	maxAttempts  int
	retryBackoff time.Duration
}

// NewProcessor constructs a Processor.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:       reader,
		handler:      handler,
		logger:       log.New(log.Writer(), "[consumer] ", log.LstdFlags|log.Lmsgprefix),
		fetchBackoff: time.Second,
		maxAttempts:  5,
		retryBackoff: time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes messages until ctx is cancelled. Malformed records are
// committed so they cannot block the partition. A record whose handler fails
// is retried in place, so later offsets are never committed ahead of it; once
// the attempts run out it is logged, counted as dropped and committed. If ctx
// ends mid-retry the record stays uncommitted and is redelivered to the group.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			p.logger.Printf("fetch error: %v", err)
			if !sleepCtx(ctx, p.fetchBackoff) {
				return ctx.Err()
			}
			continue
		}

		event, decodeErr := decodeMessage(msg)
		if decodeErr != nil {
			p.logger.Printf("decode error (topic=%s, partition=%d, offset=%d): %v", msg.Topic, msg.Partition, msg.Offset, decodeErr)
			recordDecodeError(msg.Topic)
			if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
				p.logger.Printf("commit error after decode failure: %v", commitErr)
			}
			continue
		}

		handled, err := p.dispatch(ctx, event)
		if err != nil {
			return err
		}

		if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
			p.logger.Printf("commit error: %v", commitErr)
			continue
		}
		if handled {
			recordProcessed(event)
		}
	}
}

// dispatch hands event to the handler until it succeeds or maxAttempts is
// reached. handled is false when the record was given up on.
func (p *Processor) dispatch(ctx context.Context, event Message) (handled bool, err error) {
	for attempt := 1; ; attempt++ {
		handleErr := p.handler.Handle(ctx, event)
		if handleErr == nil {
			return true, nil
		}
		p.logger.Printf("handler error (event_type=%s, tenant=%s, offset=%d, attempt=%d/%d): %v",
			event.EventType, event.TenantID, event.Offset, attempt, p.maxAttempts, handleErr)
		recordHandlerError(event)

		if attempt >= p.maxAttempts {
			p.logger.Printf("dropping record (topic=%s, partition=%d, offset=%d) after %d attempts", event.Topic, event.Partition, event.Offset, attempt)
			recordDropped(event)
			return false, nil
		}
		if !sleepCtx(ctx, p.retryBackoff) {
			return false, ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func decodeMessage(msg kafka.Message) (Message, error) {
	if len(msg.Value) < 5 {
		return Message{}, fmt.Errorf("invalid payload length: %d", len(msg.Value))
	}
	if msg.Value[0] != 0 {
		return Message{}, fmt.Errorf("unexpected magic byte %d", msg.Value[0])
	}

	eventType, ok := headerValue(msg, events.HeaderEventType)
	if !ok {
		return Message{}, errors.New("missing event_type header")
	}
	tenantID, _ := headerValue(msg, events.HeaderTenantID)
	schemaSubject, _ := headerValue(msg, events.HeaderSchemaSubject)

	return Message{
		Topic:         msg.Topic,
		Partition:     msg.Partition,
		Offset:        msg.Offset,
		Timestamp:     msg.Time,
		EventType:     string(eventType),
		TenantID:      string(tenantID),
		SchemaSubject: string(schemaSubject),
		SchemaID:      int(binary.BigEndian.Uint32(msg.Value[1:5])),
		Payload:       json.RawMessage(append([]byte(nil), msg.Value[5:]...)),
	}, nil
}

func headerValue(msg kafka.Message, key string) ([]byte, bool) {
	for _, header := range msg.Headers {
		if header.Key == key {
			return header.Value, true
		}
	}
	return nil, false
}
