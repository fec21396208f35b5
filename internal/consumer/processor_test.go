package consumer

import (
	"context"
	"encoding/binary"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestProcessorCommitsOnSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payload := []byte(`{"activity_id":"abc"}`)
	value := make([]byte, 5+len(payload))
	value[0] = 0
	binary.BigEndian.PutUint32(value[1:5], uint32(42))
	copy(value[5:], payload)

	msg := kafka.Message{
		Topic:     "activity_events",
		Partition: 0,
		Offset:    10,
		Time:      time.Now().UTC(),
		Value:     value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("activity.tracked")},
			{Key: "tenant_id", Value: []byte("tenant-1")},
			{Key: "schema_subject", Value: []byte("activity_events-value")},
		},
	}

	reader := &stubReader{
		messages: []kafka.Message{msg},
		after:    contextCanceled,
	}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0)))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, "activity.tracked", handler.last.EventType)
	require.Equal(t, "tenant-1", handler.last.TenantID)
	require.Equal(t, 42, handler.last.SchemaID)
	require.JSONEq(t, string(payload), string(handler.last.Payload))
}

func TestProcessorDropsRecordAfterExhaustingRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{
		messages: []kafka.Message{trackedRecord(20, "tenant-2")},
		after:    contextCanceled,
	}
	handler := &stubHandler{err: errors.New("boom")}

	processor := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0)), WithHandlerRetries(3, time.Millisecond))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 3, handler.calls)
	require.Equal(t, []int64{20}, reader.committed)
}

func TestProcessorRetriesFailedRecordBeforeCommittingLaterOffsets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{
		messages: []kafka.Message{trackedRecord(1, "tenant-1"), trackedRecord(2, "tenant-1")},
		after:    contextCanceled,
	}
	handler := &stubHandler{failTimes: 1}

	processor := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0)), WithHandlerRetries(5, time.Millisecond))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, []int64{1, 1, 2}, handler.offsets)
	require.Equal(t, []int64{1, 2}, reader.committed)
}

func TestProcessorLeavesRecordUncommittedWhenCancelledMidRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{messages: []kafka.Message{trackedRecord(7, "tenant-1")}}
	handler := &stubHandler{}
	handler.onCall = func() error {
		cancel()
		return errors.New("postgres unavailable")
	}

	processor := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0)), WithHandlerRetries(5, time.Hour))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Empty(t, reader.committed)
}

func TestProcessorCommitsUndecodableMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{
		messages: []kafka.Message{
			{Topic: "activity_events", Offset: 1, Value: []byte{0, 1}},
			{Topic: "activity_events", Offset: 2, Value: []byte{0, 0, 0, 0, 1, '{', '}'}},
		},
		after: contextCanceled,
	}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(log.New(testWriter{t}, "", 0)))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Zero(t, handler.calls, "short frame and missing event_type header never reach the handler")
	require.Equal(t, 2, reader.commitCalls)
}

func TestProcessorBacksOffAfterFetchError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	fetches := 0
	reader := &stubReader{after: func() error {
		fetches++
		if fetches > 2 {
			return context.Canceled
		}
		return errors.New("broker unavailable")
	}}

	processor := NewProcessor(reader, &stubHandler{}, WithLogger(log.New(testWriter{t}, "", 0)), WithFetchBackoff(time.Millisecond))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 3, fetches)
}

func TestChainRunsAllHandlersAndJoinsErrors(t *testing.T) {
	first := &stubHandler{err: errors.New("first")}
	second := &stubHandler{}

	err := Chain(first, nil, second).Handle(context.Background(), Message{EventType: "activity.tracked"})
	require.ErrorContains(t, err, "first")
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)

	require.NoError(t, Chain(second).Handle(context.Background(), Message{}))
}

type stubReader struct {
	messages    []kafka.Message
	index       int
	commitCalls int
	committed   []int64
	after       func() error
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if r.index >= len(r.messages) {
		if r.after != nil {
			return kafka.Message{}, r.after()
		}
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.commitCalls++
	for _, msg := range msgs {
		r.committed = append(r.committed, msg.Offset)
	}
	return nil
}

func (r *stubReader) Close() error { return nil }

func contextCanceled() error { return context.Canceled }

type stubHandler struct {
	calls     int
	err       error
	failTimes int
	onCall    func() error
	offsets   []int64
	last      Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	h.offsets = append(h.offsets, msg.Offset)
	if h.onCall != nil {
		return h.onCall()
	}
	if h.failTimes > 0 {
		h.failTimes--
		return errors.New("transient failure")
	}
	return h.err
}

func trackedRecord(offset int64, tenantID string) kafka.Message {
	payload := []byte(`{"activity_id":"abc"}`)
	value := make([]byte, 5+len(payload))
	binary.BigEndian.PutUint32(value[1:5], uint32(7))
	copy(value[5:], payload)
	return kafka.Message{
		Topic:  "activity_events",
		Offset: offset,
		Time:   time.Now().UTC(),
		Value:  value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("activity.tracked")},
			{Key: "tenant_id", Value: []byte(tenantID)},
			{Key: "schema_subject", Value: []byte("activity_events-value")},
		},
	}
}

type testWriter struct {
	t *testing.T
}

func (tw testWriter) Write(p []byte) (int, error) {
	tw.t.Log(string(p))
	return len(p), nil
}
