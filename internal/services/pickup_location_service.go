package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bakeshop/internal/models"
	"bakeshop/internal/repositories"
)

type PickupLocationService interface {
	Create(ctx context.Context, location *models.PickupLocation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PickupLocation, error)
	Update(ctx context.Context, location *models.PickupLocation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAnyMatching(ctx context.Context, nameFilter string, limit, offset int) ([]*models.PickupLocation, error)
	CountAnyMatching(ctx context.Context, nameFilter string) (int, error)
	// GetDefault returns the location preselected on new orders.
	GetDefault(ctx context.Context) (*models.PickupLocation, error)
}

type pickupLocationService struct {
	locationRepo repositories.PickupLocationRepository
}

func NewPickupLocationService(locationRepo repositories.PickupLocationRepository) PickupLocationService {
	return &pickupLocationService{locationRepo: locationRepo}
}

func (s *pickupLocationService) Create(ctx context.Context, location *models.PickupLocation) error {
	if strings.TrimSpace(location.Name) == "" {
		return fmt.Errorf("pickup location name is required")
	}
	if location.ID == uuid.Nil {
		location.ID = uuid.New()
	}
	location.Name = strings.TrimSpace(location.Name)
	return s.locationRepo.Create(ctx, location)
}

func (s *pickupLocationService) GetByID(ctx context.Context, id uuid.UUID) (*models.PickupLocation, error) {
	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return location, nil
}

func (s *pickupLocationService) Update(ctx context.Context, location *models.PickupLocation) error {
	if strings.TrimSpace(location.Name) == "" {
		return fmt.Errorf("pickup location name is required")
	}
	location.Name = strings.TrimSpace(location.Name)
	err := s.locationRepo.Update(ctx, location)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *pickupLocationService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.locationRepo.Delete(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrReferenced):
		return ErrLocationInUse
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	}
	return err
}

func (s *pickupLocationService) FindAnyMatching(ctx context.Context, nameFilter string, limit, offset int) ([]*models.PickupLocation, error) {
	return s.locationRepo.FindAnyMatching(ctx, nameFilter, limit, offset)
}

func (s *pickupLocationService) CountAnyMatching(ctx context.Context, nameFilter string) (int, error) {
	return s.locationRepo.CountAnyMatching(ctx, nameFilter)
}

func (s *pickupLocationService) GetDefault(ctx context.Context) (*models.PickupLocation, error) {
	location, err := s.locationRepo.First(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return location, nil
}
