package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/natourcam/tourism-api/internal/lifecycle"
	"github.com/natourcam/tourism-api/internal/model"
)

// Store adapts the SQL repositories to the lifecycle engine's
// persistence port.  Every engine operation runs inside one database
// transaction: InTx begins it, hands the repos' Tx-scoped methods to
// the callback, and commits or rolls back based on the callback's
// error.  Repository sentinels are translated to the lifecycle
// sentinels here so the engine never depends on this package.
type Store struct {
	DB             *sql.DB
	Tours          *TourRepo
	Availabilities *AvailabilityRepo
	Bookings       *BookingRepo
	Payments       *PaymentRepo
}

// NewStore builds the lifecycle store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:             db,
		Tours:          NewTourRepo(db),
		Availabilities: NewAvailabilityRepo(db),
		Bookings:       NewBookingRepo(db),
		Payments:       NewPaymentRepo(db),
	}
}

// InTx runs fn inside one database transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx lifecycle.Tx) error) error {
	dbTx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&storeTx{store: s, tx: dbTx}); err != nil {
		dbTx.Rollback()
		return err
	}
	return dbTx.Commit()
}

// storeTx is the per-transaction view handed to the engine.
type storeTx struct {
	store *Store
	tx    *sql.Tx
}

func (t *storeTx) TourByID(ctx context.Context, id uint64) (*model.Tour, error) {
	tour, err := t.store.Tours.GetByIDTx(ctx, t.tx, id)
	if err == ErrTourNotFound {
		return nil, lifecycle.ErrTourNotFound
	}
	return tour, err
}

func (t *storeTx) SlotByID(ctx context.Context, id uint64) (*model.TourAvailability, error) {
	slot, err := t.store.Availabilities.GetByIDTx(ctx, t.tx, id)
	if err == ErrAvailabilityNotFound {
		return nil, lifecycle.ErrSlotNotFound
	}
	return slot, err
}

func (t *storeTx) ReserveSpots(ctx context.Context, slotID uint64, n uint32) error {
	switch err := t.store.Availabilities.ReserveTx(ctx, t.tx, slotID, n); err {
	case ErrAvailabilityNotFound:
		return lifecycle.ErrSlotNotFound
	case ErrAvailabilityDisabled:
		return lifecycle.ErrSlotDisabled
	case ErrNoCapacity:
		return lifecycle.ErrNoCapacity
	default:
		return err
	}
}

func (t *storeTx) ReleaseSpots(ctx context.Context, slotID uint64, n uint32) error {
	if err := t.store.Availabilities.ReleaseTx(ctx, t.tx, slotID, n); err == ErrInvalidRelease {
		return lifecycle.ErrInvalidRelease
	} else if err != nil {
		return err
	}
	return nil
}

func (t *storeTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	return t.store.Bookings.InsertTx(ctx, t.tx, b)
}

func (t *storeTx) InsertParticipants(ctx context.Context, bookingID uint64, parts []model.BookingParticipant) error {
	return t.store.Bookings.InsertParticipantsTx(ctx, t.tx, bookingID, parts)
}

func (t *storeTx) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := t.store.Bookings.GetByIDTx(ctx, t.tx, id)
	if err == ErrBookingNotFound {
		return nil, lifecycle.ErrBookingNotFound
	}
	return b, err
}

func (t *storeTx) TransitionBooking(ctx context.Context, id uint64, from []string, to string, at time.Time) (bool, error) {
	return t.store.Bookings.TransitionTx(ctx, t.tx, id, from, to, at)
}

func (t *storeTx) PaymentByBookingID(ctx context.Context, bookingID uint64) (*model.Payment, error) {
	p, err := t.store.Payments.GetByBookingIDTx(ctx, t.tx, bookingID)
	if err == ErrPaymentNotFound {
		return nil, lifecycle.ErrPaymentNotFound
	}
	return p, err
}

func (t *storeTx) InsertPayment(ctx context.Context, p *model.Payment) error {
	if err := t.store.Payments.InsertTx(ctx, t.tx, p); err == ErrDuplicateTransactionRef {
		return lifecycle.ErrDuplicateRef
	} else if err != nil {
		return err
	}
	return nil
}

func (t *storeTx) MarkPaymentRefunded(ctx context.Context, paymentID uint64, at time.Time) (bool, error) {
	return t.store.Payments.MarkRefundedTx(ctx, t.tx, paymentID, at)
}
