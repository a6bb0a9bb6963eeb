package kafka

import (
	"context"
	"time"
)

// Reservation lifecycle event types.
const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
	EventBlockCreated     = "block.created"
	EventBlockUpdated     = "block.updated"
	EventBlockCancelled   = "block.cancelled"
)

// Header keys attached to every published event.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
)

// ReservationEvent is emitted after a reservation mutation commits.
// StartDate/EndDate are nil for cancellations and omitted from the payload.
type ReservationEvent struct {
	Type          string     `json:"type"`
	ReservationID string     `json:"reservationId"`
	PropertyID    string     `json:"propertyId"`
	StartDate     *time.Time `json:"startDate,omitempty"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	OccurredAt    time.Time  `json:"occurredAt"`
}

// Publisher is what the services depend on; *Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
}
