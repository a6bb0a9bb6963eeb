package model

import "time"

// PropertyLock is an advisory lock document. Uniqueness of _id makes the
// insert race-free; ExpiresAt backs a TTL index so an abandoned lock
// cannot wedge a property forever.
type PropertyLock struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}
