package reservations

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// OverlapFilter matches active reservations on the property whose interval
// shares at least one instant with [start, end]. Boundaries are inclusive:
// two intervals that merely touch at an endpoint count as overlapping, so
// back-to-back reservations on the same instant are rejected. A candidate
// overlaps when its range contains start, contains end, or starts inside
// [start, end]. excludeID drops one record from the scan; updates pass the
// record's own ID so its old range cannot conflict with its new one.
func OverlapFilter(propertyID string, start, end time.Time, excludeID string) bson.M {
	filter := bson.M{
		"property_id":  propertyID,
		"date_deleted": nil,
		"$or": []bson.M{
			{"start_date": bson.M{"$lte": start}, "end_date": bson.M{"$gte": start}},
			{"start_date": bson.M{"$lte": end}, "end_date": bson.M{"$gte": end}},
			{"start_date": bson.M{"$gte": start, "$lte": end}},
		},
	}
	if excludeID != "" {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return filter
}

// ActiveByID matches a single non-deleted reservation.
func ActiveByID(id string) bson.M {
	return bson.M{"_id": id, "date_deleted": nil}
}

// ActiveByPropertyAndID additionally pins the owning property, as cancel
// is scoped to the property in the URL.
func ActiveByPropertyAndID(propertyID, id string) bson.M {
	return bson.M{"_id": id, "property_id": propertyID, "date_deleted": nil}
}
