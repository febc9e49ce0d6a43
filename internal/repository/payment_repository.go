package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/natourcam/tourism-api/internal/model"
)

// PaymentRepo persists payment rows.  The schema carries two unique
// keys, booking_id and transaction_ref, so both "second payment for a
// booking" and "reused gateway reference" surface as duplicate-key
// errors on insert rather than needing a read-then-write check.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo wires the repo to an open database handle.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, booking_id, amount_cents, currency, method, transaction_ref,
	status, payment_date, refund_date, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }, p *model.Payment) error {
	return row.Scan(
		&p.ID, &p.BookingID, &p.AmountCents, &p.Currency, &p.Method, &p.TransactionRef,
		&p.Status, &p.PaymentDate, &p.RefundDate, &p.CreatedAt, &p.UpdatedAt,
	)
}

// InsertTx creates a payment row inside the caller's transaction.
// Duplicate booking or transaction reference comes back as
// ErrDuplicateTransactionRef.
func (r *PaymentRepo) InsertTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments
		(booking_id, amount_cents, currency, method, transaction_ref, status, payment_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		p.BookingID, p.AmountCents, p.Currency, p.Method, p.TransactionRef, p.Status, p.PaymentDate)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateTransactionRef
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByBookingID loads the payment attached to a booking, or returns
// ErrPaymentNotFound when the booking was never paid.
func (r *PaymentRepo) GetByBookingID(ctx context.Context, bookingID uint64) (*model.Payment, error) {
	var p model.Payment
	err := scanPayment(r.db.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = ?`, bookingID), &p)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByBookingIDTx is GetByBookingID inside the caller's transaction.
func (r *PaymentRepo) GetByBookingIDTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.Payment, error) {
	var p model.Payment
	err := scanPayment(tx.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = ?`, bookingID), &p)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkRefundedTx moves a COMPLETED payment to REFUNDED and stamps the
// refund date.  The status guard in the WHERE clause makes the refund
// check atomic: a payment already refunded (or never completed) leaves
// zero rows affected and the caller gets false.
func (r *PaymentRepo) MarkRefundedTx(ctx context.Context, tx *sql.Tx, paymentID uint64, at time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = ?, refund_date = ? WHERE id = ? AND status = ?`,
		model.PaymentRefunded, at, paymentID, model.PaymentCompleted,
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
