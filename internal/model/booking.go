package model

import "time"

// Booking status values stored in the bookings.status enum column.
const (
    BookingPending   = "PENDING"
    BookingConfirmed = "CONFIRMED"
    BookingCancelled = "CANCELLED"
    BookingCompleted = "COMPLETED"
)

// Booking records a user's reservation of spots on one tour
// availability date.  A booking holds capacity from the moment it is
// created (status PENDING), before any payment has been recorded, so
// that two pending bookings can never both believe the same spots are
// free.  Status transitions and the matching capacity side effects are
// owned exclusively by the lifecycle engine.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – tourist who made the booking.
//  TourID            – booked tour (denormalized from the availability row).
//  AvailabilityID    – availability date whose capacity this booking consumes.
//  Participants      – number of spots consumed; > 0.
//  TotalPriceCents   – total price in minor units (unit price * participants).
//  Currency          – 3-letter currency code for the total.
//  Status            – PENDING, CONFIRMED, CANCELLED or COMPLETED.
//  SpecialRequests   – free-form text passed to the operator.
//  EmergencyName     – emergency contact name.
//  EmergencyPhone    – emergency contact phone.
//  ConfirmationDate  – when the booking was confirmed (nullable).
//  CancellationDate  – when the booking was cancelled (nullable).
//  CompletedDate     – when the booking was completed (nullable).
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp (status_changed_at).
type Booking struct {
    ID               uint64     // bookings.id
    UserID           uint64     // bookings.user_id
    TourID           uint64     // bookings.tour_id
    AvailabilityID   uint64     // bookings.availability_id
    Participants     uint32     // bookings.participants
    TotalPriceCents  int64      // bookings.total_price_cents
    Currency         string     // bookings.currency
    Status           string     // bookings.status
    SpecialRequests  string     // bookings.special_requests
    EmergencyName    string     // bookings.emergency_contact_name
    EmergencyPhone   string     // bookings.emergency_contact_phone
    ConfirmationDate *time.Time // bookings.confirmation_date (nullable)
    CancellationDate *time.Time // bookings.cancellation_date (nullable)
    CompletedDate    *time.Time // bookings.completed_date (nullable)
    CreatedAt        time.Time  // bookings.created_at
    UpdatedAt        time.Time  // bookings.updated_at
}

// TotalPrice returns the booking total as a Money value.
func (b *Booking) TotalPrice() Money {
    return Money{AmountCents: b.TotalPriceCents, Currency: b.Currency}
}

// IsTerminal reports whether the booking is in a state that admits no
// further transitions.
func (b *Booking) IsTerminal() bool {
    return b.Status == BookingCancelled || b.Status == BookingCompleted
}

// BookingParticipant holds the identity details of one participant in
// a booking.  Participant rows are exclusively owned by their booking
// and are removed with it (cascading delete).
//
// Fields:
//  ID             – primary key identifier.
//  BookingID      – owning booking.
//  FirstName      – participant first name.
//  LastName       – participant last name.
//  DateOfBirth    – participant date of birth.
//  PassportNumber – optional passport number.
//  Nationality    – participant nationality.
//  CreatedAt      – creation timestamp.
type BookingParticipant struct {
    ID             uint64    // booking_participants.id
    BookingID      uint64    // booking_participants.booking_id
    FirstName      string    // booking_participants.first_name
    LastName       string    // booking_participants.last_name
    DateOfBirth    time.Time // booking_participants.date_of_birth
    PassportNumber string    // booking_participants.passport_number
    Nationality    string    // booking_participants.nationality
    CreatedAt      time.Time // booking_participants.created_at
}
