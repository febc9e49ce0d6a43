package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/natourcam/tourism-api/internal/model"
)

// NotificationSink stores user-facing notifications produced from
// booking events.  Satisfied by the notification repository.
type NotificationSink interface {
	Insert(ctx context.Context, n *model.Notification) error
}

// StartConsumer connects to RabbitMQ, declares the booking.events queue
// (durable), and starts consuming messages.  Each event becomes a row
// in the notifications table plus a line in logs/booking.log.  The
// function runs a reconnect loop and never returns under normal
// operation; processing errors are logged and the offending message is
// rejected without requeue so the server keeps operating.
func StartConsumer(url string, sink NotificationSink) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, sink); err != nil {
			log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, sink NotificationSink) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS failed: %v", err)
	}

	_, err = ch.QueueDeclare(QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, sink); err != nil {
			log.Printf("booking-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, sink NotificationSink) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	if err := appendAuditLine(ev); err != nil {
		return err
	}

	n := notificationFor(ev)
	if n == nil {
		return nil
	}
	if err := sink.Insert(context.Background(), n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// notificationFor maps one lifecycle event to the user-facing
// notification it should produce, or nil when none applies.
func notificationFor(ev BookingEvent) *model.Notification {
	bookingID := ev.BookingID
	base := model.Notification{RecipientID: ev.UserID, BookingID: &bookingID}

	switch ev.Type {
	case TypeBookingCreated:
		base.Type = model.NotifyBookingConfirmation
		base.Title = "Booking received"
		base.Message = fmt.Sprintf("Your booking for %q on %s is reserved and awaiting payment.", ev.TourTitle, ev.TourDate)
	case TypeBookingConfirmed:
		base.Type = model.NotifyPaymentConfirmation
		base.Title = "Booking confirmed"
		base.Message = fmt.Sprintf("Payment received. Your booking for %q on %s is confirmed.", ev.TourTitle, ev.TourDate)
	case TypeBookingCancelled:
		base.Type = model.NotifyBookingCancellation
		base.Title = "Booking cancelled"
		if ev.Refunded {
			base.Message = fmt.Sprintf("Your booking for %q on %s was cancelled and your payment will be refunded.", ev.TourTitle, ev.TourDate)
		} else {
			base.Message = fmt.Sprintf("Your booking for %q on %s was cancelled.", ev.TourTitle, ev.TourDate)
		}
	case TypeBookingCompleted:
		base.Type = model.NotifyBookingCompleted
		base.Title = "Tour completed"
		base.Message = fmt.Sprintf("We hope you enjoyed %q. Thank you for travelling with us!", ev.TourTitle)
	default:
		return nil
	}
	return &base
}

func appendAuditLine(ev BookingEvent) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "booking.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | tour_id=%d | tour=%q | date=%s | participants=%d | total=%d %s | refunded=%t\n",
		ev.OccurredAt, ev.Type, ev.BookingID, ev.UserID, ev.TourID, ev.TourTitle, ev.TourDate,
		ev.Participants, ev.TotalAmountCents, ev.Currency, ev.Refunded)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
