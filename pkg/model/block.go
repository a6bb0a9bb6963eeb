package model

import "time"

// Block is an owner-side reservation (maintenance, personal use). It keeps
// its own collection: blocks carry no guest data and follow a different
// overlap policy than bookings.
type Block struct {
	Reservation `bson:",inline"`
}

type BlockRequest struct {
	StartDate *time.Time `json:"startDate" validate:"required"`
	EndDate   *time.Time `json:"endDate" validate:"required"`
}
