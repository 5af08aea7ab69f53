package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"outreach-service/internal/domain"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// EnsureUser creates the user on first sign-in and returns the stored row.
// An existing user's counters and premium flag are never reset.
func (r *PostgresUserRepository) EnsureUser(ctx context.Context, email, name string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `
        INSERT INTO users (email, name) VALUES ($1, $2)
        ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
        RETURNING email, name, premium, searches_used, created_at;
    `

	var u domain.User
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, email, name).
		Scan(&u.Email, &u.Name, &u.Premium, &u.SearchesUsed, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) GetUser(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `
        SELECT email, name, premium, searches_used, created_at
        FROM users WHERE email = $1;
    `

	var u domain.User
	err := conn(ctx, r.db).QueryRowContext(ctx, query, email).
		Scan(&u.Email, &u.Name, &u.Premium, &u.SearchesUsed, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

// IncrementSearches is a single conditional UPDATE so concurrent requests across
// instances cannot push the counter past limit.
func (r *PostgresUserRepository) IncrementSearches(ctx context.Context, email string, limit int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `
        UPDATE users SET searches_used = searches_used + 1
        WHERE email = $1 AND NOT premium AND searches_used < $2;
    `

	res, err := conn(ctx, r.db).ExecContext(ctx, query, email, limit)
	if err != nil {
		return false, fmt.Errorf("failed to increment searches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresUserRepository) SetPremium(ctx context.Context, email string, premium bool) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE users SET premium = $2 WHERE email = $1;`, email, premium)
	if err != nil {
		return fmt.Errorf("failed to set premium: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return nil
}
