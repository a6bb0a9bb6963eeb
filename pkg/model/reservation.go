package model

import "time"

// Reservation carries the fields shared by bookings and blocks. A record
// with DateDeleted unset is active; once the stamp is set the record is
// permanently excluded from every active-state query.
type Reservation struct {
	ID          string     `json:"id" bson:"_id"`
	PropertyID  string     `json:"propertyId" bson:"property_id"`
	StartDate   time.Time  `json:"startDate" bson:"start_date"`
	EndDate     time.Time  `json:"endDate" bson:"end_date"`
	DateCreated time.Time  `json:"dateCreated" bson:"date_created"`
	DateUpdated *time.Time `json:"-" bson:"date_updated,omitempty"`
	DateDeleted *time.Time `json:"-" bson:"date_deleted,omitempty"`
}
