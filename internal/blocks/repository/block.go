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

	blockserrors "staybook/internal/blocks/errors"
	"staybook/internal/reservations"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"
)

const CollectionName = "property_blocks"

type BlockRepository interface {
	Insert(ctx context.Context, block *model.Block) error
	FindByID(ctx context.Context, id string) (*model.Block, error)
	// Update replaces the date range of an active block; silent no-op when
	// the ID is missing or soft-deleted.
	Update(ctx context.Context, block *model.Block) error
	SoftDelete(ctx context.Context, propertyID, id string, at time.Time) (bool, error)
	ExistsOverlapping(ctx context.Context, propertyID string, start, end time.Time, excludeID string) (bool, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBlockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBlockRepository(cfg *config.Config) BlockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBlockRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBlockRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBlockRepository) Insert(ctx context.Context, block *model.Block) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, block); err != nil {
		return fmt.Errorf("failed to insert block: %w", err)
	}
	return nil
}

func (r *mongoBlockRepository) FindByID(ctx context.Context, id string) (*model.Block, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", blockserrors.ErrInvalidID, id)
	}

	var block model.Block
	err := r.collection.FindOne(ctx, reservations.ActiveByID(id)).Decode(&block)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, blockserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find block: %w", err)
	}

	return &block, nil
}

func (r *mongoBlockRepository) Update(ctx context.Context, block *model.Block) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := uuid.Parse(block.ID); err != nil {
		return fmt.Errorf("%w: %s", blockserrors.ErrInvalidID, block.ID)
	}

	update := bson.M{
		"$set": bson.M{
			"start_date":   block.StartDate,
			"end_date":     block.EndDate,
			"date_updated": block.DateUpdated,
		},
	}

	if _, err := r.collection.UpdateOne(ctx, reservations.ActiveByID(block.ID), update); err != nil {
		return fmt.Errorf("failed to update block: %w", err)
	}
	return nil
}

func (r *mongoBlockRepository) SoftDelete(ctx context.Context, propertyID, id string, at time.Time) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return false, fmt.Errorf("%w: %s", blockserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		reservations.ActiveByPropertyAndID(propertyID, id),
		bson.M{"$set": bson.M{"date_deleted": at}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to cancel block: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

func (r *mongoBlockRepository) ExistsOverlapping(ctx context.Context, propertyID string, start, end time.Time, excludeID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx,
		reservations.OverlapFilter(propertyID, start, end, excludeID),
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("failed to check block overlap: %w", err)
	}

	return count > 0, nil
}

func (r *mongoBlockRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
