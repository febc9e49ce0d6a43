// Package event defines the lifecycle event payloads exchanged over the
// message broker between the booking engine and downstream consumers
// (notifications, analytics).
package event

// Event type values carried in the envelope's "type" field.
const (
    TypeBookingCreated   = "booking.created"
    TypeBookingConfirmed = "booking.confirmed"
    TypeBookingCancelled = "booking.cancelled"
    TypeBookingCompleted = "booking.completed"
)

// BookingEvent is published on every booking lifecycle transition.  It
// carries enough information for downstream consumers to notify the
// user or feed analytics without querying the primary database.
type BookingEvent struct {
    Type             string `json:"type"`
    BookingID        uint64 `json:"booking_id"`
    UserID           uint64 `json:"user_id"`
    TourID           uint64 `json:"tour_id"`
    TourTitle        string `json:"tour_title"`
    AvailabilityID   uint64 `json:"availability_id"`
    TourDate         string `json:"tour_date"`
    Participants     uint32 `json:"participants"`
    TotalAmountCents int64  `json:"total_amount_cents"`
    Currency         string `json:"currency"`
    PaymentID        uint64 `json:"payment_id,omitempty"`
    Refunded         bool   `json:"refunded,omitempty"`
    OccurredAt       string `json:"occurred_at"`
}
