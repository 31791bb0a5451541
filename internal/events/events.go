package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"

	"hotelbooking/internal/model"
)

// Ledger subjects.
const (
	BookingCreated   = "bookings.created"
	BookingUpdated   = "bookings.updated"
	BookingCancelled = "bookings.cancelled"
	BookingDeleted   = "bookings.deleted"
)

// Publisher sends domain events.
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// BookingEvent is the snapshot published for every ledger change.
type BookingEvent struct {
	BookingID  string              `json:"booking_id"`
	UserID     string              `json:"user_id"`
	HotelID    string              `json:"hotel_id"`
	Status     model.BookingStatus `json:"status"`
	CheckIn    time.Time           `json:"check_in"`
	CheckOut   time.Time           `json:"check_out"`
	TotalPrice decimal.Decimal     `json:"total_price"`
	ActorID    string              `json:"actor_id"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewBookingEvent snapshots b on behalf of actorID.
func NewBookingEvent(b *model.Booking, actorID string, at time.Time) BookingEvent {
	return BookingEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		HotelID:    b.HotelID,
		Status:     b.Status,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
		TotalPrice: b.TotalPrice,
		ActorID:    actorID,
		OccurredAt: at,
	}
}

// NATSPublisher publishes JSON payloads on a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("hotelbooking"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

// NewNATSPublisherFromConn wraps an established connection.
func NewNATSPublisherFromConn(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// Noop discards events. Used when NATS_URL is unset.
type Noop struct{}

func (Noop) Publish(context.Context, string, interface{}) error { return nil }
func (Noop) Close() error                                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Recorded
}

// Recorded is one captured publication.
type Recorded struct {
	Subject string
	Data    interface{}
}

func (r *Recorder) Publish(_ context.Context, subject string, data interface{}) error {
	r.Events = append(r.Events, Recorded{Subject: subject, Data: data})
	return nil
}

func (r *Recorder) Close() error { return nil }

// Subjects lists the recorded subjects in order.
func (r *Recorder) Subjects() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Subject)
	}
	return out
}
