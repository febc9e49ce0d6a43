package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/natourcam/tourism-api/internal/model"
)

// BookingRepo persists bookings and their participant rows.  Status
// transitions are compare-and-set: the caller names the states it is
// leaving and the repo reports whether the row was actually moved, so
// concurrent transitions resolve to exactly one winner.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo wires the repo to an open database handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, tour_id, availability_id, status, participants,
	total_price_cents, currency, special_requests, emergency_contact_name, emergency_contact_phone,
	confirmation_date, cancellation_date, completed_date, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }, b *model.Booking) error {
	return row.Scan(
		&b.ID, &b.UserID, &b.TourID, &b.AvailabilityID, &b.Status, &b.Participants,
		&b.TotalPriceCents, &b.Currency, &b.SpecialRequests, &b.EmergencyName, &b.EmergencyPhone,
		&b.ConfirmationDate, &b.CancellationDate, &b.CompletedDate, &b.CreatedAt, &b.UpdatedAt,
	)
}

// InsertTx creates a booking row inside the caller's transaction and
// fills in the generated ID.
func (r *BookingRepo) InsertTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
		(user_id, tour_id, availability_id, status, participants, total_price_cents,
		 currency, special_requests, emergency_contact_name, emergency_contact_phone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.UserID, b.TourID, b.AvailabilityID, b.Status, b.Participants,
		b.TotalPriceCents, b.Currency, b.SpecialRequests, b.EmergencyName, b.EmergencyPhone,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// InsertParticipantsTx bulk-inserts the participant detail rows for a
// booking.  An empty slice is a no-op; details are optional.
func (r *BookingRepo) InsertParticipantsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, ps []model.BookingParticipant) error {
	if len(ps) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO booking_participants
		(booking_id, first_name, last_name, date_of_birth, passport_number, nationality) VALUES `)
	args := make([]any, 0, len(ps)*6)
	for i, p := range ps {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?)")
		args = append(args, bookingID, p.FirstName, p.LastName, p.DateOfBirth, p.PassportNumber, p.Nationality)
	}
	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

// GetByID loads a single booking or returns ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id), &b)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByIDTx is GetByID inside the caller's transaction.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
	var b model.Booking
	err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id), &b)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// TransitionTx atomically moves a booking from any of the `from`
// statuses to `to`, stamping the matching milestone timestamp.  It
// returns false when the row was not in an eligible status, which is
// how races between concurrent transitions are decided.
func (r *BookingRepo) TransitionTx(ctx context.Context, tx *sql.Tx, id uint64, from []string, to string, at time.Time) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	stamp := ""
	switch to {
	case model.BookingConfirmed:
		stamp = ", confirmation_date = ?"
	case model.BookingCancelled:
		stamp = ", cancellation_date = ?"
	case model.BookingCompleted:
		stamp = ", completed_date = ?"
	}
	q := `UPDATE bookings SET status = ?` + stamp +
		` WHERE id = ? AND status IN (?` + strings.Repeat(", ?", len(from)-1) + `)`
	args := make([]any, 0, len(from)+3)
	args = append(args, to)
	if stamp != "" {
		args = append(args, at)
	}
	args = append(args, id)
	for _, s := range from {
		args = append(args, s)
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// BookingDetail joins the booking with the tour title and departure
// date a caller actually wants when listing bookings.
type BookingDetail struct {
	model.Booking
	TourTitle string
	TourDate  time.Time
}

const bookingDetailQuery = `SELECT b.id, b.user_id, b.tour_id, b.availability_id, b.status,
	b.participants, b.total_price_cents, b.currency, b.special_requests,
	b.emergency_contact_name, b.emergency_contact_phone, b.confirmation_date,
	b.cancellation_date, b.completed_date, b.created_at, b.updated_at, t.title, a.date
	FROM bookings b
	JOIN tours t ON t.id = b.tour_id
	JOIN tour_availability a ON a.id = b.availability_id`

func (r *BookingRepo) listDetail(ctx context.Context, q string, args ...any) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		err := rows.Scan(
			&d.ID, &d.UserID, &d.TourID, &d.AvailabilityID, &d.Status, &d.Participants,
			&d.TotalPriceCents, &d.Currency, &d.SpecialRequests, &d.EmergencyName, &d.EmergencyPhone,
			&d.ConfirmationDate, &d.CancellationDate, &d.CompletedDate, &d.CreatedAt, &d.UpdatedAt,
			&d.TourTitle, &d.TourDate,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByUser returns a tourist's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	return r.listDetail(ctx, bookingDetailQuery+` WHERE b.user_id = ? ORDER BY b.created_at DESC`, userID)
}

// ListByTourForOperator returns every booking on one of the operator's
// tours.  Ownership is enforced in the join so an operator cannot read
// another operator's manifest.
func (r *BookingRepo) ListByTourForOperator(ctx context.Context, tourID, operatorID uint64) ([]BookingDetail, error) {
	return r.listDetail(ctx,
		bookingDetailQuery+` WHERE b.tour_id = ? AND t.operator_id = ? ORDER BY a.date, b.created_at`,
		tourID, operatorID,
	)
}

// ParticipantsByBooking loads the participant details for one booking.
func (r *BookingRepo) ParticipantsByBooking(ctx context.Context, bookingID uint64) ([]model.BookingParticipant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, first_name, last_name, date_of_birth, passport_number, nationality, created_at
		 FROM booking_participants WHERE booking_id = ? ORDER BY id`,
		bookingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.BookingParticipant, 0)
	for rows.Next() {
		var p model.BookingParticipant
		if err := rows.Scan(&p.ID, &p.BookingID, &p.FirstName, &p.LastName, &p.DateOfBirth, &p.PassportNumber, &p.Nationality, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
