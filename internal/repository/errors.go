// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as handlers to distinguish between different failure scenarios.
// For example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrDuplicateDate signals that an operator republished an
// availability date that already exists.
package repository

import (
    "errors"
    "strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrTourNotFound is returned when a tour id does not exist.
var ErrTourNotFound = errors.New("tour not found")

// ErrAvailabilityNotFound is returned when an availability id does not exist.
var ErrAvailabilityNotFound = errors.New("availability not found")

// ErrBookingNotFound is returned when a booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrPaymentNotFound is returned when a booking has no payment row.
var ErrPaymentNotFound = errors.New("payment not found")

// ErrDuplicateDate is returned when an operator publishes availability
// for a tour+date combination that already exists.
var ErrDuplicateDate = errors.New("availability date already published")

// ErrAvailabilityDisabled is returned when a reservation targets a
// soft-disabled availability row.
var ErrAvailabilityDisabled = errors.New("availability disabled")

// ErrNoCapacity is returned when a reservation asks for more spots than
// an availability row has left.
var ErrNoCapacity = errors.New("insufficient capacity")

// ErrInvalidRelease is returned when a capacity release would push the
// reserved counter below zero.  It signals a double-release bug in the
// caller and must never occur under correct lifecycle discipline.
var ErrInvalidRelease = errors.New("release exceeds reserved spots")

// ErrDuplicateTransactionRef is returned when a payment reuses an
// external transaction reference, or targets a booking that already
// has a payment.
var ErrDuplicateTransactionRef = errors.New("duplicate transaction ref")

// isDuplicateKey reports whether err is a MySQL duplicate-key error
// (error number 1062) without depending on the driver's error type.
func isDuplicateKey(err error) bool {
    return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
