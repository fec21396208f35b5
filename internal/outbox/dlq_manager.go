package outbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

const maxBackoff = time.Hour

// DLQManager retries failed outbox messages and quarantines exhausted entries.
type DLQManager struct {
	pool       *pgxpool.Pool
	maxRetries int
	baseDelay  time.Duration
	logger     *log.Logger
}

// DLQOption customises a DLQManager.
type DLQOption func(*DLQManager)

// WithDLQLogger overrides the manager logger.
func WithDLQLogger(logger *log.Logger) DLQOption {
	return func(m *DLQManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewDLQManager constructs a DLQManager with the provided pool and retry configuration.
func NewDLQManager(pool *pgxpool.Pool, maxRetries int, baseDelay time.Duration, opts ...DLQOption) *DLQManager {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	if baseDelay <= 0 {
		baseDelay = time.Minute
	}
	m := &DLQManager{
		pool:       pool,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     log.New(log.Writer(), "dlq-manager ", log.LstdFlags|log.Lmsgprefix),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Schedule registers a RunOnce job on c using a cron spec such as "@every 30s".
func (m *DLQManager) Schedule(ctx context.Context, c *cron.Cron, spec string, batchSize int) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		processed, err := m.RunOnce(ctx, batchSize)
		if err != nil {
			m.logger.Printf("run failed after %d entries: %v", processed, err)
			return
		}
		if processed > 0 {
			m.logger.Printf("processed %d entries", processed)
		}
	})
}

// RunOnce processes a batch of due DLQ entries and returns how many were
// requeued or quarantined.
func (m *DLQManager) RunOnce(ctx context.Context, batchSize int) (int, error) {
	const query = `SELECT dlq_id, tenant_id, event_id, event_type, topic, payload, reason, aggregate_type, aggregate_id, schema_subject, partition_key, retry_count
                    FROM outbox_dlq
                   WHERE quarantined_at IS NULL AND (next_retry_at IS NULL OR next_retry_at <= NOW())
                   ORDER BY created_at
                   LIMIT $1`

	rows, err := m.pool.Query(ctx, query, batchSize)
	if err != nil {
		return 0, err
	}
	entries := make([]dlqEntry, 0, batchSize)
	for rows.Next() {
		entry, scanErr := scanDLQEntry(rows)
		if scanErr != nil {
			err = errors.Join(err, scanErr)
			continue
		}
		entries = append(entries, entry)
	}
	rows.Close()
	if rowsErr := rows.Err(); rowsErr != nil {
		err = errors.Join(err, rowsErr)
	}

	processed := 0
	for _, entry := range entries {
		if procErr := m.handleEntry(ctx, entry); procErr != nil {
			err = errors.Join(err, fmt.Errorf("dlq entry %d: %w", entry.ID, procErr))
			continue
		}
		processed++
	}

	updateBacklogGauge(ctx, m.pool)
	return processed, err
}

// handleEntry applies retry/quarantine logic for a single DLQ entry.
func (m *DLQManager) handleEntry(ctx context.Context, entry dlqEntry) error {
	if entry.RetryCount >= m.maxRetries {
		err := withTenantTx(ctx, m.pool, entry.TenantID, func(tx pgx.Tx) error {
			_, err := tx.Exec(ctx, `UPDATE outbox_dlq SET quarantined_at = NOW(), quarantine_reason = $1 WHERE dlq_id = $2`, "retry limit reached", entry.ID)
			return err
		})
		if err == nil {
			recordDLQQuarantined(entry)
			m.logger.Printf("quarantined event_id=%d aggregate_id=%s after %d retries", entry.EventID, entry.AggregateID, entry.RetryCount)
		}
		return err
	}

	var requeueErr error
	err := withTenantTx(ctx, m.pool, entry.TenantID, func(tx pgx.Tx) error {
		if requeueErr = requeueOutbox(ctx, tx, entry); requeueErr != nil {
			return requeueErr
		}
		_, err := tx.Exec(ctx, `DELETE FROM outbox_dlq WHERE dlq_id = $1`, entry.ID)
		return err
	})
	if err == nil {
		recordDLQRequeued(entry)
		recordDLQProcessed(entry)
		return nil
	}
	if requeueErr == nil {
		return err
	}

	delay := m.backoffDelay(entry.RetryCount + 1)
	scheduleErr := withTenantTx(ctx, m.pool, entry.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE outbox_dlq
			    SET retry_count = retry_count + 1,
			        last_attempt_at = NOW(),
			        next_retry_at = NOW() + $1::interval,
			        reason = $2
			  WHERE dlq_id = $3`,
			delay, requeueErr.Error(), entry.ID,
		)
		return err
	})
	if scheduleErr != nil {
		return scheduleErr
	}
	recordDLQRetry(entry)
	return nil
}

// backoffDelay doubles the base delay per attempt, capped at one hour.
func (m *DLQManager) backoffDelay(attempt int) time.Duration {
	delay := m.baseDelay
	for i := 1; i < attempt; i++ {
		if delay >= maxBackoff/2 {
			return maxBackoff
		}
		delay *= 2
	}
	if delay > maxBackoff || delay <= 0 {
		return maxBackoff
	}
	return delay
}

// requeueOutbox reinserts the payload into the primary outbox table for replay.
func requeueOutbox(ctx context.Context, tx pgx.Tx, entry dlqEntry) error {
	if entry.SchemaSubject == "" {
		return fmt.Errorf("missing schema_subject for dlq entry %d", entry.ID)
	}
	if _, ok := schemaCatalog[entry.EventType]; !ok {
		return fmt.Errorf("unknown event_type %q for dlq entry %d", entry.EventType, entry.ID)
	}

	const stmt = `INSERT INTO outbox (tenant_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload)
                   VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err := tx.Exec(ctx, stmt,
		entry.TenantID,
		entry.AggregateType,
		entry.AggregateID,
		entry.EventType,
		entry.Topic,
		entry.SchemaSubject,
		entry.PartitionKey,
		entry.Payload,
	)
	return err
}

type dlqEntry struct {
	ID            int64
	TenantID      string
	EventID       int64
	EventType     string
	Topic         string
	Payload       []byte
	Reason        string
	AggregateType string
	AggregateID   string
	SchemaSubject string
	PartitionKey  string
	RetryCount    int
}

func scanDLQEntry(rows pgx.Rows) (dlqEntry, error) {
	var entry dlqEntry
	if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.EventID, &entry.EventType, &entry.Topic, &entry.Payload, &entry.Reason, &entry.AggregateType, &entry.AggregateID, &entry.SchemaSubject, &entry.PartitionKey, &entry.RetryCount); err != nil {
		return dlqEntry{}, err
	}
	return entry, nil
}
