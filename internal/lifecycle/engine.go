package lifecycle

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/natourcam/tourism-api/internal/event"
    "github.com/natourcam/tourism-api/internal/model"
)

// Engine orchestrates booking creation, payment confirmation,
// cancellation and completion, enforcing the cross-aggregate invariants
// atomically: capacity is consumed exactly once when a booking is
// created and released exactly once when it is cancelled, a payment's
// amount always equals its booking's total, and a payment is refunded
// at most once.  Each operation runs inside a single Store transaction;
// events are published only after the commit succeeds.
type Engine struct {
    store    Store
    notifier Notifier
    now      func() time.Time
}

// NewEngine constructs an Engine.  The notifier may be nil, in which
// case lifecycle events are silently dropped.
func NewEngine(store Store, notifier Notifier) *Engine {
    if store == nil {
        panic("nil store passed to NewEngine")
    }
    return &Engine{store: store, notifier: notifier, now: func() time.Time { return time.Now().UTC() }}
}

// CreateRequest carries the input for Engine.Create.  TotalPrice is the
// caller-computed total; it must equal the tour's unit price multiplied
// by the participant count, otherwise the request is rejected with
// PRICE_MISMATCH rather than silently repriced.
type CreateRequest struct {
    UserID          uint64
    AvailabilityID  uint64
    Participants    uint32
    TotalPrice      model.Money
    Details         []model.BookingParticipant
    SpecialRequests string
    EmergencyName   string
    EmergencyPhone  string
}

// Create validates the request against the availability row, reserves
// capacity and persists the booking with its participant rows as one
// atomic unit.  Capacity is held from creation, before any payment:
// a PENDING booking blocks the date.  On success the new booking is
// returned and a booking.created event is published.
func (e *Engine) Create(ctx context.Context, req CreateRequest) (*model.Booking, error) {
    if req.Participants == 0 {
        return nil, newErr(KindValidation, CodeInvalidParticipants, "participant count must be greater than zero")
    }

    var (
        booking model.Booking
        tour    *model.Tour
        slot    *model.TourAvailability
    )
    err := e.store.InTx(ctx, func(tx Tx) error {
        var err error
        slot, err = tx.SlotByID(ctx, req.AvailabilityID)
        if err != nil {
            if errors.Is(err, ErrSlotNotFound) {
                return newErr(KindNotFound, CodeSlotNotFound, "availability %d not found", req.AvailabilityID)
            }
            return err
        }
        tour, err = tx.TourByID(ctx, slot.TourID)
        if err != nil {
            if errors.Is(err, ErrTourNotFound) {
                return newErr(KindNotFound, CodeTourNotFound, "tour %d not found", slot.TourID)
            }
            return err
        }
        if !tour.DateInRange(slot.Date) {
            return newErr(KindValidation, CodeDateOutOfRange, "date %s is outside the tour's valid range", slot.Date.Format("2006-01-02"))
        }
        expected, err := tour.UnitPrice().Multiply(int64(req.Participants))
        if err != nil {
            return err
        }
        if !expected.Equal(req.TotalPrice) {
            return newErr(KindValidation, CodePriceMismatch, "expected total %s, got %s", expected, req.TotalPrice)
        }

        // Check and increment happen as one exclusive read-modify-write
        // on the availability row; under concurrent create calls for the
        // last remaining spots exactly one reservation succeeds.
        if err := tx.ReserveSpots(ctx, slot.ID, req.Participants); err != nil {
            switch {
            case errors.Is(err, ErrSlotDisabled):
                return newErr(KindCapacity, CodeSlotDisabled, "availability %d is disabled", slot.ID)
            case errors.Is(err, ErrNoCapacity):
                return newErr(KindCapacity, CodeInsufficientSpots, "not enough spots available on %s", slot.Date.Format("2006-01-02"))
            case errors.Is(err, ErrSlotNotFound):
                return newErr(KindNotFound, CodeSlotNotFound, "availability %d not found", slot.ID)
            }
            return err
        }

        booking = model.Booking{
            UserID:          req.UserID,
            TourID:          tour.ID,
            AvailabilityID:  slot.ID,
            Participants:    req.Participants,
            TotalPriceCents: expected.AmountCents,
            Currency:        expected.Currency,
            Status:          model.BookingPending,
            SpecialRequests: req.SpecialRequests,
            EmergencyName:   req.EmergencyName,
            EmergencyPhone:  req.EmergencyPhone,
            CreatedAt:       e.now(),
        }
        if err := tx.InsertBooking(ctx, &booking); err != nil {
            return err
        }
        return tx.InsertParticipants(ctx, booking.ID, req.Details)
    })
    if err != nil {
        return nil, err
    }

    e.publish(ctx, event.BookingEvent{
        Type:             event.TypeBookingCreated,
        BookingID:        booking.ID,
        UserID:           booking.UserID,
        TourID:           tour.ID,
        TourTitle:        tour.Title,
        AvailabilityID:   slot.ID,
        TourDate:         slot.Date.Format("2006-01-02"),
        Participants:     booking.Participants,
        TotalAmountCents: booking.TotalPriceCents,
        Currency:         booking.Currency,
        OccurredAt:       booking.CreatedAt.Format(time.RFC3339),
    })
    return &booking, nil
}

// RecordPayment registers a completed settlement for a PENDING booking
// and confirms the booking in the same transaction.  The amount must
// equal the booking total and the external transaction reference must
// be unused.  "Payment succeeded" and "payment recorded" collapse into
// one call here because the gateway is outside this core; asynchronous
// confirmation would be reintroduced at that boundary.
func (e *Engine) RecordPayment(ctx context.Context, bookingID uint64, method, externalRef string, amount model.Money) (*model.Payment, error) {
    if !model.ValidMethod(method) {
        return nil, newErr(KindValidation, CodeInvalidMethod, "unknown payment method %q", method)
    }

    var (
        payment model.Payment
        booking *model.Booking
        title   string
        date    string
    )
    now := e.now()
    err := e.store.InTx(ctx, func(tx Tx) error {
        var err error
        booking, err = tx.BookingByID(ctx, bookingID)
        if err != nil {
            if errors.Is(err, ErrBookingNotFound) {
                return newErr(KindNotFound, CodeBookingNotFound, "booking %d not found", bookingID)
            }
            return err
        }
        title, date, err = tourContext(ctx, tx, booking)
        if err != nil {
            return err
        }
        if booking.Status != model.BookingPending {
            return newErr(KindState, CodeBookingNotPending, "booking %d is %s, not PENDING", bookingID, booking.Status)
        }
        if !amount.Equal(booking.TotalPrice()) {
            return newErr(KindValidation, CodeAmountMismatch, "amount %s does not match booking total %s", amount, booking.TotalPrice())
        }

        payment = model.Payment{
            BookingID:      bookingID,
            AmountCents:    amount.AmountCents,
            Currency:       amount.Currency,
            Method:         method,
            TransactionRef: externalRef,
            Status:         model.PaymentCompleted,
            PaymentDate:    &now,
            CreatedAt:      now,
        }
        if err := tx.InsertPayment(ctx, &payment); err != nil {
            if errors.Is(err, ErrDuplicateRef) {
                return newErr(KindConflict, CodeDuplicateRef, "transaction reference already recorded")
            }
            return err
        }

        ok, err := tx.TransitionBooking(ctx, bookingID, []string{model.BookingPending}, model.BookingConfirmed, now)
        if err != nil {
            return err
        }
        if !ok {
            // Lost a race with a concurrent transition; the unique
            // booking_id constraint on payments makes this unreachable
            // in practice, but surface it rather than commit blindly.
            return newErr(KindConflict, CodeBookingNotPending, "booking %d changed state concurrently", bookingID)
        }
        return nil
    })
    if err != nil {
        return nil, err
    }

    e.publish(ctx, event.BookingEvent{
        Type:             event.TypeBookingConfirmed,
        BookingID:        booking.ID,
        UserID:           booking.UserID,
        TourID:           booking.TourID,
        TourTitle:        title,
        AvailabilityID:   booking.AvailabilityID,
        TourDate:         date,
        Participants:     booking.Participants,
        TotalAmountCents: booking.TotalPriceCents,
        Currency:         booking.Currency,
        PaymentID:        payment.ID,
        OccurredAt:       now.Format(time.RFC3339),
    })
    return &payment, nil
}

// Cancel transitions a PENDING or CONFIRMED booking to CANCELLED,
// releases its spots back to the availability row and refunds the
// payment when a COMPLETED one exists.  Cancelling an already cancelled
// booking fails with ALREADY_CANCELLED rather than silently succeeding,
// to surface programming errors early; the capacity release can never
// run twice because the status compare-and-set picks a single winner.
func (e *Engine) Cancel(ctx context.Context, bookingID, actorID uint64) (*model.Booking, error) {
    var (
        booking  *model.Booking
        refunded bool
        title    string
        date     string
    )
    now := e.now()
    err := e.store.InTx(ctx, func(tx Tx) error {
        var err error
        booking, err = tx.BookingByID(ctx, bookingID)
        if err != nil {
            if errors.Is(err, ErrBookingNotFound) {
                return newErr(KindNotFound, CodeBookingNotFound, "booking %d not found", bookingID)
            }
            return err
        }
        title, date, err = tourContext(ctx, tx, booking)
        if err != nil {
            return err
        }

        ok, err := tx.TransitionBooking(ctx, bookingID, []string{model.BookingPending, model.BookingConfirmed}, model.BookingCancelled, now)
        if err != nil {
            return err
        }
        if !ok {
            if booking.Status == model.BookingCancelled {
                return newErr(KindState, CodeAlreadyCancelled, "booking %d is already cancelled", bookingID)
            }
            return newErr(KindState, CodeInvalidTransition, "booking %d is %s and cannot be cancelled", bookingID, booking.Status)
        }

        if err := tx.ReleaseSpots(ctx, booking.AvailabilityID, booking.Participants); err != nil {
            return err
        }

        payment, err := tx.PaymentByBookingID(ctx, bookingID)
        switch {
        case errors.Is(err, ErrPaymentNotFound):
            // Capacity-only cancellation; nothing was settled.
        case err != nil:
            return err
        case payment.Status == model.PaymentCompleted:
            refunded, err = tx.MarkPaymentRefunded(ctx, payment.ID, now)
            if err != nil {
                return err
            }
        }

        booking.Status = model.BookingCancelled
        booking.CancellationDate = &now
        return nil
    })
    if err != nil {
        return nil, err
    }

    log.Printf("lifecycle: booking %d cancelled by user %d (refunded=%v)", bookingID, actorID, refunded)
    e.publish(ctx, event.BookingEvent{
        Type:             event.TypeBookingCancelled,
        BookingID:        booking.ID,
        UserID:           booking.UserID,
        TourID:           booking.TourID,
        TourTitle:        title,
        AvailabilityID:   booking.AvailabilityID,
        TourDate:         date,
        Participants:     booking.Participants,
        TotalAmountCents: booking.TotalPriceCents,
        Currency:         booking.Currency,
        Refunded:         refunded,
        OccurredAt:       now.Format(time.RFC3339),
    })
    return booking, nil
}

// Complete transitions a CONFIRMED booking to COMPLETED.  Unless force
// is set (explicit operator action) the tour date must have passed.
// Completion has no capacity side effect: the spots stay consumed for
// the availability row's history.
func (e *Engine) Complete(ctx context.Context, bookingID uint64, force bool) (*model.Booking, error) {
    var (
        booking *model.Booking
        title   string
        date    string
    )
    now := e.now()
    err := e.store.InTx(ctx, func(tx Tx) error {
        var err error
        booking, err = tx.BookingByID(ctx, bookingID)
        if err != nil {
            if errors.Is(err, ErrBookingNotFound) {
                return newErr(KindNotFound, CodeBookingNotFound, "booking %d not found", bookingID)
            }
            return err
        }
        if booking.Status != model.BookingConfirmed {
            if booking.IsTerminal() {
                return newErr(KindState, CodeInvalidTransition, "booking %d is %s and cannot be completed", bookingID, booking.Status)
            }
            return newErr(KindState, CodeNotConfirmed, "booking %d is %s, not CONFIRMED", bookingID, booking.Status)
        }
        slot, err := tx.SlotByID(ctx, booking.AvailabilityID)
        if err != nil {
            return err
        }
        if !force && slot.Date.After(now) {
            return newErr(KindState, CodeDateNotPassed, "tour date %s has not passed", slot.Date.Format("2006-01-02"))
        }
        tour, err := tx.TourByID(ctx, booking.TourID)
        if err != nil {
            return err
        }
        title, date = tour.Title, slot.Date.Format("2006-01-02")

        ok, err := tx.TransitionBooking(ctx, bookingID, []string{model.BookingConfirmed}, model.BookingCompleted, now)
        if err != nil {
            return err
        }
        if !ok {
            return newErr(KindState, CodeInvalidTransition, "booking %d changed state concurrently", bookingID)
        }
        booking.Status = model.BookingCompleted
        booking.CompletedDate = &now
        return nil
    })
    if err != nil {
        return nil, err
    }

    e.publish(ctx, event.BookingEvent{
        Type:             event.TypeBookingCompleted,
        BookingID:        booking.ID,
        UserID:           booking.UserID,
        TourID:           booking.TourID,
        TourTitle:        title,
        AvailabilityID:   booking.AvailabilityID,
        TourDate:         date,
        Participants:     booking.Participants,
        TotalAmountCents: booking.TotalPriceCents,
        Currency:         booking.Currency,
        OccurredAt:       now.Format(time.RFC3339),
    })
    return booking, nil
}

// tourContext resolves the tour title and date for a booking so event
// payloads carry enough context for consumers to build user-facing
// messages without follow-up queries.
func tourContext(ctx context.Context, tx Tx, b *model.Booking) (title, date string, err error) {
    slot, err := tx.SlotByID(ctx, b.AvailabilityID)
    if err != nil {
        return "", "", err
    }
    tour, err := tx.TourByID(ctx, b.TourID)
    if err != nil {
        return "", "", err
    }
    return tour.Title, slot.Date.Format("2006-01-02"), nil
}

// publish sends an event to the notifier after a successful commit.
// Notifier failures are logged and never propagated: notification is
// best-effort and decoupled from the consistency-critical path.
func (e *Engine) publish(ctx context.Context, ev event.BookingEvent) {
    if e.notifier == nil {
        return
    }
    if err := e.notifier.Publish(ctx, ev); err != nil {
        log.Printf("lifecycle: publish %s for booking %d failed: %v", ev.Type, ev.BookingID, err)
    }
}
