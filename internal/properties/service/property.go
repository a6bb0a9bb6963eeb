package service

import (
	"context"

	"github.com/google/uuid"

	"staybook/internal/properties/repository"
	"staybook/pkg/config"
	apperrors "staybook/pkg/errors"
)

type PropertyService interface {
	AssertExists(ctx context.Context, propertyID string) error
}

type propertyService struct {
	repo repository.PropertyRepository
	cfg  *config.Config
}

func NewPropertyService(repo repository.PropertyRepository, cfg *config.Config) PropertyService {
	return &propertyService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *propertyService) AssertExists(ctx context.Context, propertyID string) error {
	if _, err := uuid.Parse(propertyID); err != nil {
		return apperrors.InvalidInput("Invalid property ID format")
	}

	exists, err := s.repo.Exists(ctx, propertyID)
	if err != nil {
		s.cfg.Log.Error("Failed to check property existence", "property_id", propertyID, "error", err)
		return apperrors.Internal("Failed to check property existence", err)
	}
	if !exists {
		return apperrors.NotFound("Property")
	}
	return nil
}
