package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natourcam/tourism-api/internal/model"
)

func sampleEvent(typ string) BookingEvent {
	return BookingEvent{
		Type:             typ,
		BookingID:        42,
		UserID:           7,
		TourID:           3,
		TourTitle:        "Mount Cameroon Trek",
		AvailabilityID:   10,
		TourDate:         "2026-09-14",
		Participants:     2,
		TotalAmountCents: 50000,
		Currency:         "USD",
		OccurredAt:       "2026-08-29T10:00:00Z",
	}
}

func TestNotificationForCreated(t *testing.T) {
	n := notificationFor(sampleEvent(TypeBookingCreated))
	require.NotNil(t, n)
	assert.Equal(t, model.NotifyBookingConfirmation, n.Type)
	assert.Equal(t, uint64(7), n.RecipientID)
	require.NotNil(t, n.BookingID)
	assert.Equal(t, uint64(42), *n.BookingID)
	assert.Contains(t, n.Message, "Mount Cameroon Trek")
	assert.Contains(t, n.Message, "2026-09-14")
}

func TestNotificationForConfirmed(t *testing.T) {
	n := notificationFor(sampleEvent(TypeBookingConfirmed))
	require.NotNil(t, n)
	assert.Equal(t, model.NotifyPaymentConfirmation, n.Type)
	assert.Equal(t, "Booking confirmed", n.Title)
}

func TestNotificationForCancelledMentionsRefund(t *testing.T) {
	ev := sampleEvent(TypeBookingCancelled)
	ev.Refunded = true
	n := notificationFor(ev)
	require.NotNil(t, n)
	assert.Equal(t, model.NotifyBookingCancellation, n.Type)
	assert.Contains(t, n.Message, "refunded")

	ev.Refunded = false
	n = notificationFor(ev)
	require.NotNil(t, n)
	assert.NotContains(t, n.Message, "refunded")
}

func TestNotificationForCompleted(t *testing.T) {
	n := notificationFor(sampleEvent(TypeBookingCompleted))
	require.NotNil(t, n)
	assert.Equal(t, model.NotifyBookingCompleted, n.Type)
}

func TestNotificationForUnknownTypeIsDropped(t *testing.T) {
	assert.Nil(t, notificationFor(sampleEvent("booking.unknown")))
}
