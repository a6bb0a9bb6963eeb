package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	blocksrepo "staybook/internal/blocks/repository"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/validator"
	propertyservice "staybook/internal/properties/service"
	"staybook/internal/reservations"
	"staybook/pkg/clock"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/kafka"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
)

type BookingService interface {
	Book(ctx context.Context, propertyID string, req *model.BookingRequest) (*model.Booking, error)
	Update(ctx context.Context, propertyID, bookingID string, req *model.BookingRequest) error
	Cancel(ctx context.Context, propertyID, bookingID string) error
}

type bookingService struct {
	repo       repository.BookingRepository
	blocks     blocksrepo.BlockRepository
	properties propertyservice.PropertyService
	locks      reservations.PropertyLockRepository
	validator  *validator.BookingValidator
	clock      clock.Clock
	events     kafka.Publisher
	cfg        *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	blocks blocksrepo.BlockRepository,
	properties propertyservice.PropertyService,
	locks reservations.PropertyLockRepository,
	validator *validator.BookingValidator,
	clk clock.Clock,
	events kafka.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:       repo,
		blocks:     blocks,
		properties: properties,
		locks:      locks,
		validator:  validator,
		clock:      clk,
		events:     events,
		cfg:        cfg,
	}
}

func (s *bookingService) Book(ctx context.Context, propertyID string, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitize(req)
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

	var booking *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.ensureAvailable(sessCtx, propertyID, *req.StartDate, *req.EndDate, ""); err != nil {
			return err
		}

		booking = &model.Booking{
			Reservation: model.Reservation{
				ID:          uuid.NewString(),
				PropertyID:  propertyID,
				StartDate:   *req.StartDate,
				EndDate:     *req.EndDate,
				DateCreated: s.clock.Now(),
			},
			GuestFirstName: req.GuestFirstName,
			GuestLastName:  req.GuestLastName,
		}

		if err := s.repo.Insert(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "property_id", propertyID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"property_id", propertyID,
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
	)
	s.publishEvent(ctx, kafka.EventBookingCreated, booking.ID, propertyID, &booking.StartDate, &booking.EndDate)
	return booking, nil
}

func (s *bookingService) Update(ctx context.Context, propertyID, bookingID string, req *model.BookingRequest) error {
	s.sanitize(req)
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
		// The record being updated is itself active, so its own ID is
		// excluded from the scan; only other reservations can conflict.
		if err := s.ensureAvailable(sessCtx, propertyID, *req.StartDate, *req.EndDate, bookingID); err != nil {
			return err
		}

		existing, err := s.repo.FindByID(sessCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFound("Booking")
			}
			if errors.Is(err, bookingserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid booking ID format")
			}
			return apperrors.Internal("Failed to retrieve booking", err)
		}

		updated := *existing // keeps ID, PropertyID and DateCreated
		updated.GuestFirstName = req.GuestFirstName
		updated.GuestLastName = req.GuestLastName
		updated.StartDate = *req.StartDate
		updated.EndDate = *req.EndDate
		now := s.clock.Now()
		updated.DateUpdated = &now

		if err := s.repo.Update(sessCtx, &updated); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", bookingID, "error", err)
		return err
	}

	s.cfg.Log.Info("Booking updated successfully", "id", bookingID)
	s.publishEvent(ctx, kafka.EventBookingUpdated, bookingID, propertyID, req.StartDate, req.EndDate)
	return nil
}

func (s *bookingService) Cancel(ctx context.Context, propertyID, bookingID string) error {
	cancelled, err := s.repo.SoftDelete(ctx, propertyID, bookingID, s.clock.Now())
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to cancel booking", err)
	}
	if !cancelled {
		return apperrors.NotFound("Property booking")
	}

	s.cfg.Log.Info("Booking cancelled successfully", "id", bookingID, "property_id", propertyID)
	s.publishEvent(ctx, kafka.EventBookingCancelled, bookingID, propertyID, nil, nil)
	return nil
}

// ensureAvailable enforces the joint invariant: a booking conflicts with
// any active booking or block on the property that shares an instant with
// the requested range.
func (s *bookingService) ensureAvailable(ctx context.Context, propertyID string, start, end time.Time, excludeBookingID string) error {
	bookingExists, err := s.repo.ExistsOverlapping(ctx, propertyID, start, end, excludeBookingID)
	if err != nil {
		return apperrors.Internal("Failed to check existing bookings", err)
	}

	blockExists, err := s.blocks.ExistsOverlapping(ctx, propertyID, start, end, "")
	if err != nil {
		return apperrors.Internal("Failed to check existing blocks", err)
	}

	if bookingExists || blockExists {
		return apperrors.Validation("Bookings cannot overlap with other bookings or blocks")
	}
	return nil
}

// sanitize runs before validation so length limits count real characters,
// not stray padding.
func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.GuestFirstName = sanitizer.NormalizeName(req.GuestFirstName)
	req.GuestLastName = sanitizer.NormalizeName(req.GuestLastName)
}

func (s *bookingService) validateRequest(req *model.BookingRequest) error {
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return apperrors.ValidationFields(validationErrs.Fields())
		}
		return apperrors.Validation(err.Error())
	}
	return nil
}

func (s *bookingService) releaseLock(ctx context.Context, lockID string) {
	if err := s.locks.Release(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release property lock", "lock_id", lockID, "error", err)
	}
}

// Event publishing is best-effort: by the time it runs the mutation has
// committed, so a broker failure is logged and swallowed. Cancellations
// carry no dates.
func (s *bookingService) publishEvent(ctx context.Context, eventType, bookingID, propertyID string, start, end *time.Time) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, kafka.ReservationEvent{
		Type:          eventType,
		ReservationID: bookingID,
		PropertyID:    propertyID,
		StartDate:     start,
		EndDate:       end,
		OccurredAt:    s.clock.Now(),
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"type", eventType,
			"booking_id", bookingID,
			"error", err,
		)
	}
}
