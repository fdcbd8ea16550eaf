package storage

import (
	"context"
	"errors"
	"fmt"

	"shopium/payments-service/internal/payment"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertPayment writes a new payment record. Records are insert-only; there
// is no update path.
func (s *Store) InsertPayment(ctx context.Context, p payment.Payment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payments (id, order_id, user_id, amount, currency, payment_method, payment_status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)`,
		p.ID, p.OrderID, p.UserID, p.Amount, p.Currency, p.PaymentMethod, p.PaymentStatus, p.TransactionID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment row: %w", err)
	}
	return nil
}

func (s *Store) GetPaymentByID(ctx context.Context, id uuid.UUID) (payment.Payment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, order_id, user_id, amount, currency, payment_method, payment_status, COALESCE(transaction_id, ''), created_at, updated_at
		FROM payments
		WHERE id = $1`,
		id,
	)
	return scanPayment(row)
}

// GetPaymentByOrderID returns the most recent record for the order. The
// schema does not enforce one payment per order, so ties are broken
// deterministically.
func (s *Store) GetPaymentByOrderID(ctx context.Context, orderID uuid.UUID) (payment.Payment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, order_id, user_id, amount, currency, payment_method, payment_status, COALESCE(transaction_id, ''), created_at, updated_at
		FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC, id
		LIMIT 1`,
		orderID,
	)
	return scanPayment(row)
}

func scanPayment(row pgx.Row) (payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID,
		&p.OrderID,
		&p.UserID,
		&p.Amount,
		&p.Currency,
		&p.PaymentMethod,
		&p.PaymentStatus,
		&p.TransactionID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payment.Payment{}, payment.ErrNotFound
		}
		return payment.Payment{}, fmt.Errorf("scan payment: %w", err)
	}
	return p, nil
}
