package lifecycle

import (
    "context"
    "errors"
    "time"

    "github.com/natourcam/tourism-api/internal/event"
    "github.com/natourcam/tourism-api/internal/model"
)

// Sentinel errors the Store implementation must return so the engine
// can translate persistence outcomes into its error taxonomy.
var (
    ErrTourNotFound    = errors.New("tour not found")
    ErrSlotNotFound    = errors.New("availability not found")
    ErrBookingNotFound = errors.New("booking not found")
    ErrPaymentNotFound = errors.New("payment not found")
    ErrSlotDisabled    = errors.New("availability disabled")
    ErrNoCapacity      = errors.New("insufficient capacity")
    ErrInvalidRelease  = errors.New("release exceeds reserved spots")
    ErrDuplicateRef    = errors.New("duplicate transaction ref")
)

// Store opens atomic units of work against the persistence layer.  All
// mutations performed through the Tx passed to fn commit together when
// fn returns nil and are discarded when it returns an error.  Two
// concurrent units touching the same availability row must serialize:
// ReserveSpots performs its capacity check and increment as one
// exclusive read-modify-write, never check-then-act.
type Store interface {
    InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the data access surface available inside one atomic unit.
type Tx interface {
    // TourByID loads a tour or returns ErrTourNotFound.
    TourByID(ctx context.Context, id uint64) (*model.Tour, error)

    // SlotByID loads an availability row or returns ErrSlotNotFound.
    SlotByID(ctx context.Context, id uint64) (*model.TourAvailability, error)

    // ReserveSpots atomically consumes n spots from an availability row.
    // It returns ErrNoCapacity when fewer than n spots remain,
    // ErrSlotDisabled when the row is soft-disabled, and
    // ErrSlotNotFound for an unknown id.  The check and the increment
    // happen under exclusive access to the row.
    ReserveSpots(ctx context.Context, slotID uint64, n uint32) error

    // ReleaseSpots atomically returns n spots to an availability row.
    // It returns ErrInvalidRelease when the release would push the
    // reserved count below zero, which signals a double-release bug
    // upstream and must never happen under correct lifecycle discipline.
    ReleaseSpots(ctx context.Context, slotID uint64, n uint32) error

    // InsertBooking persists a new booking and fills in its ID.
    InsertBooking(ctx context.Context, b *model.Booking) error

    // InsertParticipants persists participant detail rows for a booking.
    InsertParticipants(ctx context.Context, bookingID uint64, parts []model.BookingParticipant) error

    // BookingByID loads a booking or returns ErrBookingNotFound.
    BookingByID(ctx context.Context, id uint64) (*model.Booking, error)

    // TransitionBooking performs a compare-and-set on the booking
    // status: the update applies only while the current status is one
    // of from.  It reports whether a row was updated, so concurrent
    // transitions on the same booking resolve to exactly one winner.
    TransitionBooking(ctx context.Context, id uint64, from []string, to string, at time.Time) (bool, error)

    // PaymentByBookingID loads the payment for a booking or returns
    // ErrPaymentNotFound when none has been recorded.
    PaymentByBookingID(ctx context.Context, bookingID uint64) (*model.Payment, error)

    // InsertPayment persists a new payment and fills in its ID.  It
    // returns ErrDuplicateRef when the transaction reference or the
    // booking id is already used by another payment.
    InsertPayment(ctx context.Context, p *model.Payment) error

    // MarkPaymentRefunded moves a COMPLETED payment to REFUNDED and
    // stamps the refund date.  It reports whether a row was updated;
    // false means the payment was not in COMPLETED state.
    MarkPaymentRefunded(ctx context.Context, paymentID uint64, at time.Time) (bool, error)
}

// Notifier receives lifecycle events after a successful commit.
// Publishing is fire-and-forget from the engine's perspective: failures
// are logged by the engine and never affect the committed transaction.
type Notifier interface {
    Publish(ctx context.Context, ev event.BookingEvent) error
}
