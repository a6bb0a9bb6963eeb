package reservations

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/pkg/clock"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/model"
)

const lockCollectionName = "property_locks"

// PropertyLockRepository provides per-property advisory locks. Create and
// update serialize on the lock before running the overlap check, which
// closes the race between two requests checking availability at the same
// time. Locks expire via TTL so a crashed holder cannot wedge a property.
type PropertyLockRepository interface {
	Acquire(ctx context.Context, propertyID string) (string, error)
	Release(ctx context.Context, lockID string) error
}

type mongoPropertyLockRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	clock      clock.Clock
}

func NewPropertyLockRepository(cfg *config.Config, clk clock.Clock) PropertyLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyLockRepository{
		collection: db.Collection(lockCollectionName),
		ttl:        cfg.PropertyLockTTL,
		clock:      clk,
	}
}

// EnsureLockIndexes creates the TTL index backing lock expiry. Called once
// at startup.
func EnsureLockIndexes(ctx context.Context, cfg *config.Config) error {
	collection := cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(lockCollectionName)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("failed to create lock TTL index: %w", err)
	}
	return nil
}

// Acquire inserts a lock document keyed by the property. The unique _id
// makes the insert race-free; a duplicate key means another request holds
// the property right now.
func (r *mongoPropertyLockRepository) Acquire(ctx context.Context, propertyID string) (string, error) {
	lock := newPropertyLock(propertyID, r.clock.Now(), r.ttl)

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This property is currently being modified by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire property lock", err)
	}

	return lock.ID, nil
}

func newPropertyLock(propertyID string, now time.Time, ttl time.Duration) *model.PropertyLock {
	return &model.PropertyLock{
		ID:        fmt.Sprintf("property_lock_%s", propertyID),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (r *mongoPropertyLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
