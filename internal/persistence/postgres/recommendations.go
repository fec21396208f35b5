package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VK-10/AI-fitness-App/internal/domain"
)

const recommendationColumns = `recommendation_id::text, activity_id::text, tenant_id, user_id, activity_type, analysis, improvements, suggestions, safety, created_at`

// RecommendationRepository stores generated recommendations.
type RecommendationRepository struct {
	pool *pgxpool.Pool
}

// NewRecommendationRepository constructs a RecommendationRepository.
func NewRecommendationRepository(pool *pgxpool.Pool) *RecommendationRepository {
	return &RecommendationRepository{pool: pool}
}

// Save upserts the recommendation for its activity; a replayed event replaces
// the earlier analysis.
func (r *RecommendationRepository) Save(ctx context.Context, rec domain.Recommendation) error {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	const stmt = `INSERT INTO recommendations (recommendation_id, tenant_id, activity_id, user_id, activity_type, analysis, improvements, suggestions, safety, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (tenant_id, activity_id) DO UPDATE SET
            analysis = EXCLUDED.analysis,
            improvements = EXCLUDED.improvements,
            suggestions = EXCLUDED.suggestions,
            safety = EXCLUDED.safety,
            created_at = EXCLUDED.created_at`

	return withTenantTx(ctx, r.pool, rec.TenantID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmt,
			rec.ID,
			rec.TenantID,
			rec.ActivityID,
			rec.UserID,
			string(rec.ActivityType),
			rec.Analysis,
			nonNilStrings(rec.Improvements),
			nonNilStrings(rec.Suggestions),
			nonNilStrings(rec.Safety),
			rec.CreatedAt,
		)
		return err
	})
}

// GetByActivity returns the recommendation for an activity or (nil, nil),
// including when activityID is not a UUID.
func (r *RecommendationRepository) GetByActivity(ctx context.Context, tenantID, activityID string) (*domain.Recommendation, error) {
	id, err := uuid.Parse(activityID)
	if err != nil {
		return nil, nil
	}
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE tenant_id=$1 AND activity_id=$2`

	var found *domain.Recommendation
	err = withTenantTx(ctx, r.pool, tenantID, func(tx pgx.Tx) error {
		rec, err := scanRecommendation(tx.QueryRow(ctx, query, tenantID, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = &rec
		return nil
	})
	return found, err
}

// ListForUser returns a user's recommendations, newest first.
func (r *RecommendationRepository) ListForUser(ctx context.Context, tenantID, userID string, limit int) ([]domain.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE tenant_id=$1 AND user_id=$2 ORDER BY created_at DESC LIMIT $3`

	results := make([]domain.Recommendation, 0, limit)
	err := withTenantTx(ctx, r.pool, tenantID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, tenantID, userID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			rec, err := scanRecommendation(rows)
			if err != nil {
				return err
			}
			results = append(results, rec)
		}
		return rows.Err()
	})
	return results, err
}

func scanRecommendation(row pgx.Row) (domain.Recommendation, error) {
	var (
		rec  domain.Recommendation
		kind string
	)
	err := row.Scan(&rec.ID, &rec.ActivityID, &rec.TenantID, &rec.UserID, &kind, &rec.Analysis, &rec.Improvements, &rec.Suggestions, &rec.Safety, &rec.CreatedAt)
	rec.ActivityType = domain.ActivityType(kind)
	return rec, err
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
