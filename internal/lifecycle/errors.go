// Package lifecycle implements the booking lifecycle engine: the rules
// governing how a reservation request is validated against date-scoped
// tour capacity, how payment and cancellation transition booking state,
// and how capacity is consumed or released exactly once per transition.
// All capacity mutation in the system goes through this package.
package lifecycle

import (
    "errors"
    "fmt"
)

// Kind classifies an engine failure so that the transport layer can map
// it to a status code without inspecting individual error codes.
type Kind string

const (
    KindValidation Kind = "VALIDATION" // bad input shape (participant count, price mismatch, date range)
    KindCapacity   Kind = "CAPACITY"   // insufficient or disabled availability
    KindState      Kind = "STATE"      // invalid transition on a booking or payment
    KindConflict   Kind = "CONFLICT"   // duplicate transaction ref, concurrent loser
    KindNotFound   Kind = "NOT_FOUND"  // unknown tour/availability/booking/payment id
)

// Error is a typed engine failure carrying a stable machine-readable
// code and a human-readable message.  Internal state (lock names, row
// versions) is never exposed through it.
type Error struct {
    Kind    Kind   // failure class
    Code    string // stable machine-readable code
    Message string // human-readable message
}

func (e *Error) Error() string {
    return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Stable error codes returned by the engine.
const (
    CodeTourNotFound        = "TOUR_NOT_FOUND"
    CodeSlotNotFound        = "AVAILABILITY_NOT_FOUND"
    CodeBookingNotFound     = "BOOKING_NOT_FOUND"
    CodePaymentNotFound     = "PAYMENT_NOT_FOUND"
    CodeInvalidParticipants = "INVALID_PARTICIPANT_COUNT"
    CodePriceMismatch       = "PRICE_MISMATCH"
    CodeAmountMismatch      = "AMOUNT_MISMATCH"
    CodeInvalidMethod       = "INVALID_PAYMENT_METHOD"
    CodeDateOutOfRange      = "DATE_OUT_OF_RANGE"
    CodeInsufficientSpots   = "INSUFFICIENT_CAPACITY"
    CodeSlotDisabled        = "AVAILABILITY_DISABLED"
    CodeInvalidTransition   = "INVALID_TRANSITION"
    CodeAlreadyCancelled    = "ALREADY_CANCELLED"
    CodeBookingNotPending   = "BOOKING_NOT_PENDING"
    CodeNotRefundable       = "NOT_REFUNDABLE"
    CodeDuplicateRef        = "DUPLICATE_TRANSACTION_REF"
    CodeNotConfirmed        = "BOOKING_NOT_CONFIRMED"
    CodeDateNotPassed       = "TOUR_DATE_NOT_PASSED"
)

func newErr(kind Kind, code, format string, args ...any) *Error {
    return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a lifecycle *Error from err, when present.
func AsError(err error) (*Error, bool) {
    var le *Error
    if errors.As(err, &le) {
        return le, true
    }
    return nil, false
}
