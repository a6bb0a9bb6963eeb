package model

import "time"

type Booking struct {
	Reservation    `bson:",inline"`
	GuestFirstName string `json:"guestFirstName" bson:"guest_first_name"`
	GuestLastName  string `json:"guestLastName" bson:"guest_last_name"`
}

// BookingRequest is the body of both the create and the update call. The
// date range replaces the stored one wholesale, as do the guest names.
type BookingRequest struct {
	GuestFirstName string     `json:"guestFirstName" validate:"required,notblank,max=30"`
	GuestLastName  string     `json:"guestLastName" validate:"required,notblank,max=50"`
	StartDate      *time.Time `json:"startDate" validate:"required"`
	EndDate        *time.Time `json:"endDate" validate:"required"`
}
