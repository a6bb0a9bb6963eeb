package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/pkg/config"
)

const CollectionName = "properties"

// PropertyRepository is the read-only collaborator for the externally
// owned property catalog. Only existence is ever queried.
type PropertyRepository interface {
	Exists(ctx context.Context, propertyID string) (bool, error)
}

type mongoPropertyRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPropertyRepository(cfg *config.Config) PropertyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPropertyRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPropertyRepository) Exists(ctx context.Context, propertyID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.readTimeout())
	defer cancel()

	count, err := r.collection.CountDocuments(ctx,
		bson.M{"_id": propertyID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check property existence: %w", err)
	}
	return count > 0, nil
}

func (r *mongoPropertyRepository) readTimeout() time.Duration {
	if r.cfg.ReadTimeout > 0 {
		return r.cfg.ReadTimeout
	}
	return 15 * time.Second
}
