package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/reservations"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"
)

const CollectionName = "property_bookings"

type BookingRepository interface {
	Insert(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	// Update replaces the mutable fields of an active booking. A missing or
	// soft-deleted ID is a silent no-op; callers pre-check via FindByID.
	Update(ctx context.Context, booking *model.Booking) error
	// SoftDelete stamps date_deleted on a matching active row and reports
	// whether one was affected. False is the only "not found or already
	// cancelled" signal.
	SoftDelete(ctx context.Context, propertyID, id string, at time.Time) (bool, error)
	ExistsOverlapping(ctx context.Context, propertyID string, start, end time.Time, excludeID string) (bool, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds the call unless we are already inside a transaction;
// a SessionContext cannot be wrapped without breaking transaction semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, reservations.ActiveByID(id)).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := uuid.Parse(booking.ID); err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, booking.ID)
	}

	update := bson.M{
		"$set": bson.M{
			"guest_first_name": booking.GuestFirstName,
			"guest_last_name":  booking.GuestLastName,
			"start_date":       booking.StartDate,
			"end_date":         booking.EndDate,
			"date_updated":     booking.DateUpdated,
		},
	}

	if _, err := r.collection.UpdateOne(ctx, reservations.ActiveByID(booking.ID), update); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) SoftDelete(ctx context.Context, propertyID, id string, at time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return false, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		reservations.ActiveByPropertyAndID(propertyID, id),
		bson.M{"$set": bson.M{"date_deleted": at}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

func (r *mongoBookingRepository) ExistsOverlapping(ctx context.Context, propertyID string, start, end time.Time, excludeID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx,
		reservations.OverlapFilter(propertyID, start, end, excludeID),
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}

	return count > 0, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
