package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserDirectory validates users against the users table maintained by the
// identity service.
type UserDirectory struct {
	pool *pgxpool.Pool
}

// NewUserDirectory constructs a UserDirectory.
func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

// ValidateUser implements domain.UserValidator.
func (d *UserDirectory) ValidateUser(ctx context.Context, tenantID, userID string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE tenant_id=$1 AND user_id=$2)`,
		tenantID, userID,
	).Scan(&exists)
	return exists, err
}

// Register inserts a user if absent. Used by tests and local seeding.
func (d *UserDirectory) Register(ctx context.Context, tenantID, userID, email string) error {
	_, err := d.pool.Exec(ctx,
		`INSERT INTO users (tenant_id, user_id, email) VALUES ($1,$2,NULLIF($3,'')) ON CONFLICT DO NOTHING`,
		tenantID, userID, email,
	)
	return err
}
