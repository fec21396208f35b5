// Package postgres implements the domain repositories on PostgreSQL via pgx.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VK-10/AI-fitness-App/internal/domain"
	"github.com/VK-10/AI-fitness-App/internal/observability"
	platformevents "github.com/VK-10/AI-fitness-App/internal/platform/events"
)

const activityColumns = `activity_id::text, tenant_id, user_id, activity_type, duration_min, calories_burned, started_at, additional_metrics, version, processing_state, created_at, updated_at`

// Repository provides Postgres-backed persistence for activities and outbox events.
type Repository struct {
	pool  *pgxpool.Pool
	topic string
}

// NewRepository constructs a Repository publishing to the default activity topic.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, topic: DefaultActivityTopic}
}

// WithActivityTopic overrides the Kafka topic recorded on outbox rows.
func (r *Repository) WithActivityTopic(topic string) *Repository {
	if topic != "" {
		r.topic = topic
	}
	return r
}

// FindByIdempotency checks if an activity already exists for the supplied idempotency key.
func (r *Repository) FindByIdempotency(ctx context.Context, tenantID, userID, idempotencyKey string) (*domain.ActivityAggregate, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	query := `SELECT ` + activityColumns + ` FROM activities WHERE tenant_id=$1 AND user_id=$2 AND idempotency_key=$3`

	var found *domain.ActivityAggregate
	err := withTenantTx(ctx, r.pool, tenantID, func(tx pgx.Tx) error {
		agg, err := scanActivity(tx.QueryRow(ctx, query, tenantID, userID, idempotencyKey))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = &agg
		return nil
	})
	return found, err
}

// Create persists the aggregate and records the activity.tracked outbox event
// inside a single transaction.
func (r *Repository) Create(ctx context.Context, aggregate domain.ActivityAggregate, idempotencyKey string) error {
	metrics, err := json.Marshal(nonNilMetrics(aggregate.AdditionalMetrics))
	if err != nil {
		return fmt.Errorf("encode additional metrics: %w", err)
	}

	err = withTenantTx(ctx, r.pool, aggregate.TenantID, func(tx pgx.Tx) error {
		const insertActivity = `INSERT INTO activities (activity_id, tenant_id, user_id, activity_type, duration_min, calories_burned, started_at, additional_metrics, idempotency_key, version, processing_state, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

		if _, err := tx.Exec(ctx, insertActivity,
			aggregate.ID,
			aggregate.TenantID,
			aggregate.UserID,
			string(aggregate.Type),
			aggregate.DurationMin,
			aggregate.CaloriesBurned,
			aggregate.StartedAt,
			metrics,
			nullIfEmpty(idempotencyKey),
			aggregate.Version,
			string(aggregate.State),
			aggregate.CreatedAt,
			aggregate.UpdatedAt,
		); err != nil {
			return err
		}

		return r.insertOutbox(ctx, tx, aggregate, platformevents.ActivityTracked{
			ActivityID:        aggregate.ID,
			TenantID:          aggregate.TenantID,
			UserID:            aggregate.UserID,
			ActivityType:      string(aggregate.Type),
			DurationMin:       aggregate.DurationMin,
			CaloriesBurned:    aggregate.CaloriesBurned,
			StartedAt:         aggregate.StartedAt,
			AdditionalMetrics: aggregate.AdditionalMetrics,
			Version:           aggregate.Version,
		})
	})
	if err != nil {
		return err
	}
	observability.RecordActivityPersisted(aggregate.UpdatedAt)
	return nil
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, aggregate domain.ActivityAggregate, payload platformevents.ActivityTracked) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (tenant_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		aggregate.TenantID,
		"activity",
		aggregate.ID,
		platformevents.EventActivityTracked,
		r.topic,
		SchemaSubject(r.topic),
		PartitionKey(aggregate),
		body,
		fmt.Sprintf("%s:%s", aggregate.ID, platformevents.EventActivityTracked),
	)
	return err
}

// Get retrieves an activity by ID. A missing row or an id that is not a UUID
// yields (nil, nil).
func (r *Repository) Get(ctx context.Context, tenantID, activityID string) (*domain.ActivityAggregate, error) {
	id, err := uuid.Parse(activityID)
	if err != nil {
		return nil, nil
	}
	query := `SELECT ` + activityColumns + ` FROM activities WHERE tenant_id=$1 AND activity_id=$2`

	var found *domain.ActivityAggregate
	err = withTenantTx(ctx, r.pool, tenantID, func(tx pgx.Tx) error {
		agg, err := scanActivity(tx.QueryRow(ctx, query, tenantID, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = &agg
		return nil
	})
	return found, err
}

// ListByUser returns activities for a user ordered by start time, newest first.
func (r *Repository) ListByUser(ctx context.Context, tenantID, userID string, cursor *domain.Cursor, limit int) ([]domain.ActivityAggregate, *domain.Cursor, error) {
	args := []interface{}{tenantID, userID, limit}
	query := `SELECT ` + activityColumns + ` FROM activities WHERE tenant_id=$1 AND user_id=$2`

	if cursor != nil {
		cursorID, err := uuid.Parse(cursor.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid cursor id", domain.ErrValidation)
		}
		query += ` AND (started_at, activity_id) < ($4, $5)`
		args = append(args, cursor.StartedAt, cursorID)
	}

	query += ` ORDER BY started_at DESC, activity_id DESC LIMIT $3`

	results := make([]domain.ActivityAggregate, 0, limit)
	err := withTenantTx(ctx, r.pool, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			agg, err := scanActivity(rows)
			if err != nil {
				return err
			}
			results = append(results, agg)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{StartedAt: last.StartedAt, ID: last.ID}
	}

	return results, nextCursor, nil
}

// withTenantTx runs fn in a transaction scoped to tenantID for row-level security.
func withTenantTx(ctx context.Context, pool *pgxpool.Pool, tenantID string, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.tenant_id', $1, true)", tenantID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanActivity(row pgx.Row) (domain.ActivityAggregate, error) {
	var (
		agg     domain.ActivityAggregate
		kind    string
		state   string
		metrics []byte
	)
	if err := row.Scan(&agg.ID, &agg.TenantID, &agg.UserID, &kind, &agg.DurationMin, &agg.CaloriesBurned, &agg.StartedAt, &metrics, &agg.Version, &state, &agg.CreatedAt, &agg.UpdatedAt); err != nil {
		return domain.ActivityAggregate{}, err
	}
	agg.Type = domain.ActivityType(kind)
	agg.State = domain.ActivityState(state)
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &agg.AdditionalMetrics); err != nil {
			return domain.ActivityAggregate{}, fmt.Errorf("decode additional metrics: %w", err)
		}
	}
	return agg, nil
}

func nonNilMetrics(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// DefaultActivityTopic is the Kafka topic activity.tracked events are routed to.
const DefaultActivityTopic = "activity_events"

// SchemaSubject returns the Schema Registry subject for a topic's values.
func SchemaSubject(topic string) string {
	return topic + "-value"
}

// PartitionKey keeps a user's activities ordered within one partition.
func PartitionKey(a domain.ActivityAggregate) string {
	return fmt.Sprintf("%s:%s", a.TenantID, a.UserID)
}
