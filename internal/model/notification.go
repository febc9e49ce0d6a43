package model

import "time"

// Notification type values stored in notifications.notification_type.
const (
    NotifyBookingConfirmation = "BOOKING_CONFIRMATION"
    NotifyBookingCancellation = "BOOKING_CANCELLATION"
    NotifyBookingCompleted    = "BOOKING_COMPLETED"
    NotifyPaymentConfirmation = "PAYMENT_CONFIRMATION"
)

// Notification is a user-facing message produced by the background
// consumer of booking lifecycle events.  Delivery is best-effort and
// fully decoupled from the booking transaction that triggered it.
//
// Fields:
//  ID          – primary key identifier.
//  RecipientID – user who should see the notification.
//  Title       – short headline.
//  Message     – body text.
//  Type        – notification type enum.
//  BookingID   – related booking, if any (nullable).
//  IsRead      – whether the user has read it.
//  ReadAt      – when it was read (nullable).
//  CreatedAt   – creation timestamp.
type Notification struct {
    ID          uint64     // notifications.id
    RecipientID uint64     // notifications.recipient_id
    Title       string     // notifications.title
    Message     string     // notifications.message
    Type        string     // notifications.notification_type
    BookingID   *uint64    // notifications.booking_id (nullable)
    IsRead      bool       // notifications.is_read
    ReadAt      *time.Time // notifications.read_at (nullable)
    CreatedAt   time.Time  // notifications.created_at
}
