package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	blockserrors "staybook/internal/blocks/errors"
	"staybook/internal/blocks/repository"
	"staybook/internal/blocks/validator"
	propertyservice "staybook/internal/properties/service"
	"staybook/internal/reservations"
	"staybook/pkg/clock"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/kafka"
	"staybook/pkg/model"
)

type BlockService interface {
	Create(ctx context.Context, propertyID string, req *model.BlockRequest) (*model.Block, error)
	Update(ctx context.Context, propertyID, blockID string, req *model.BlockRequest) error
	Cancel(ctx context.Context, propertyID, blockID string) error
}

// Blocks only conflict with other blocks. An owner may block dates that
// already carry a booking, so the booking collection is never consulted here.
type blockService struct {
	repo       repository.BlockRepository
	properties propertyservice.PropertyService
	locks      reservations.PropertyLockRepository
	validator  *validator.BlockValidator
	clock      clock.Clock
	events     kafka.Publisher
	cfg        *config.Config
}

func NewBlockService(
	repo repository.BlockRepository,
	properties propertyservice.PropertyService,
	locks reservations.PropertyLockRepository,
	validator *validator.BlockValidator,
	clk clock.Clock,
	events kafka.Publisher,
	cfg *config.Config,
) BlockService {
	return &blockService{
		repo:       repo,
		properties: properties,
		locks:      locks,
		validator:  validator,
		clock:      clk,
		events:     events,
		cfg:        cfg,
	}
}

func (s *blockService) Create(ctx context.Context, propertyID string, req *model.BlockRequest) (*model.Block, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.properties.AssertExists(ctx, propertyID); err != nil {
		return nil, err
	}

	lockID, err := s.locks.Acquire(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx, lockID)

	var block *model.Block
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.ensureAvailable(sessCtx, propertyID, *req.StartDate, *req.EndDate, ""); err != nil {
			return err
		}

		block = &model.Block{
			Reservation: model.Reservation{
				ID:          uuid.NewString(),
				PropertyID:  propertyID,
				StartDate:   *req.StartDate,
				EndDate:     *req.EndDate,
				DateCreated: s.clock.Now(),
			},
		}

		if err := s.repo.Insert(sessCtx, block); err != nil {
			return apperrors.Internal("Failed to create block", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create block", "property_id", propertyID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Block created successfully",
		"id", block.ID,
		"property_id", propertyID,
		"start_date", block.StartDate,
		"end_date", block.EndDate,
	)
	s.publishEvent(ctx, kafka.EventBlockCreated, block.ID, propertyID, &block.StartDate, &block.EndDate)
	return block, nil
}

func (s *blockService) Update(ctx context.Context, propertyID, blockID string, req *model.BlockRequest) error {
	if err := s.validateRequest(req); err != nil {
		return err
	}
	if err := s.properties.AssertExists(ctx, propertyID); err != nil {
		return err
	}

	lockID, err := s.locks.Acquire(ctx, propertyID)
	if err != nil {
		return err
	}
	defer s.releaseLock(ctx, lockID)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.ensureAvailable(sessCtx, propertyID, *req.StartDate, *req.EndDate, blockID); err != nil {
			return err
		}

		existing, err := s.repo.FindByID(sessCtx, blockID)
		if err != nil {
			if errors.Is(err, blockserrors.ErrNotFound) {
				return apperrors.NotFound("Property block")
			}
			if errors.Is(err, blockserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid block ID format")
			}
			return apperrors.Internal("Failed to retrieve block", err)
		}

		updated := *existing // keeps ID, PropertyID and DateCreated
		updated.StartDate = *req.StartDate
		updated.EndDate = *req.EndDate
		now := s.clock.Now()
		updated.DateUpdated = &now

		if err := s.repo.Update(sessCtx, &updated); err != nil {
			return apperrors.Internal("Failed to update block", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update block", "id", blockID, "error", err)
		return err
	}

	s.cfg.Log.Info("Block updated successfully", "id", blockID)
	s.publishEvent(ctx, kafka.EventBlockUpdated, blockID, propertyID, req.StartDate, req.EndDate)
	return nil
}

func (s *blockService) Cancel(ctx context.Context, propertyID, blockID string) error {
	cancelled, err := s.repo.SoftDelete(ctx, propertyID, blockID, s.clock.Now())
	if err != nil {
		if errors.Is(err, blockserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid block ID format")
		}
		return apperrors.Internal("Failed to cancel block", err)
	}
	if !cancelled {
		return apperrors.NotFound("Property block")
	}

	s.cfg.Log.Info("Block cancelled successfully", "id", blockID, "property_id", propertyID)
	s.publishEvent(ctx, kafka.EventBlockCancelled, blockID, propertyID, nil, nil)
	return nil
}

func (s *blockService) ensureAvailable(ctx context.Context, propertyID string, start, end time.Time, excludeBlockID string) error {
	blockExists, err := s.repo.ExistsOverlapping(ctx, propertyID, start, end, excludeBlockID)
	if err != nil {
		return apperrors.Internal("Failed to check existing blocks", err)
	}
	if blockExists {
		return apperrors.Validation("Blocks cannot overlap with other blocks")
	}
	return nil
}

func (s *blockService) validateRequest(req *model.BlockRequest) error {
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Block validation failed", "error", err)
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return apperrors.ValidationFields(validationErrs.Fields())
		}
		return apperrors.Validation(err.Error())
	}
	return nil
}

func (s *blockService) releaseLock(ctx context.Context, lockID string) {
	if err := s.locks.Release(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release property lock", "lock_id", lockID, "error", err)
	}
}

func (s *blockService) publishEvent(ctx context.Context, eventType, blockID, propertyID string, start, end *time.Time) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, kafka.ReservationEvent{
		Type:          eventType,
		ReservationID: blockID,
		PropertyID:    propertyID,
		StartDate:     start,
		EndDate:       end,
		OccurredAt:    s.clock.Now(),
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"type", eventType,
			"block_id", blockID,
			"error", err,
		)
	}
}
