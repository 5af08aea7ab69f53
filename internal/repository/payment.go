package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"outreach-service/internal/domain"
)

type PostgresPaymentRepository struct {
	db *sql.DB
}

func NewPostgresPaymentRepository(db *sql.DB) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

const paymentColumns = `id, email, transaction_id, amount, currency, status, submitted_at, decided_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		p         domain.Payment
		status    string
		decidedAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Email, &p.TransactionID, &p.Amount, &p.Currency, &status, &p.SubmittedAt, &decidedAt); err != nil {
		return nil, err
	}
	p.Status = domain.PaymentStatus(status)
	if decidedAt.Valid {
		t := decidedAt.Time
		p.DecidedAt = &t
	}
	return &p, nil
}

func (r *PostgresPaymentRepository) CreatePayment(ctx context.Context, p *domain.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `
        INSERT INTO payments (email, transaction_id, amount, currency, status, submitted_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id;
    `

	if err := conn(ctx, r.db).QueryRowContext(ctx, query,
		p.Email, p.TransactionID, p.Amount, p.Currency, string(p.Status), p.SubmittedAt,
	).Scan(&p.ID); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (r *PostgresPaymentRepository) GetPayment(ctx context.Context, id int64) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1;`, id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	return p, nil
}

// WithinTx runs fn in one transaction shared with the user repository, so a
// decision and the premium grant it triggers commit together.
func (r *PostgresPaymentRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withinTx(ctx, r.db, fn)
}

// DecidePayment is a check-and-set on status = 'pending'; only one decision can
// ever match.
func (r *PostgresPaymentRepository) DecidePayment(ctx context.Context, id int64, status domain.PaymentStatus, decidedAt time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `
        UPDATE payments SET status = $2, decided_at = $3
        WHERE id = $1 AND status = 'pending';
    `

	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, string(status), decidedAt)
	if err != nil {
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresPaymentRepository) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}
	return payments, nil
}
