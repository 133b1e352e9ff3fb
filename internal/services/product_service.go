package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"bakeshop/internal/caching"
	"bakeshop/internal/models"
	"bakeshop/internal/repositories"
)

const productCacheTTL = 15 * time.Minute

type ProductService interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAnyMatching(ctx context.Context, nameFilter string, limit, offset int) ([]*models.Product, error)
	CountAnyMatching(ctx context.Context, nameFilter string) (int, error)

	UploadPhoto(ctx context.Context, id uuid.UUID, reader io.Reader, size int64, contentType string) (string, error)
	PhotoURL(ctx context.Context, id uuid.UUID) (string, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	productRepo repositories.ProductRepository
	cacheSvc    caching.CacheService
	storage     StorageService
	photoBucket string
}

func NewProductService(productRepo repositories.ProductRepository, cacheSvc caching.CacheService,
	storage StorageService, photoBucket string) ProductService {
	return &productService{
		productRepo: productRepo,
		cacheSvc:    cacheSvc,
		storage:     storage,
		photoBucket: photoBucket,
	}
}

func validateProduct(product *models.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if product.PriceCents <= 0 {
		return fmt.Errorf("product price must be positive")
	}
	return nil
}

func (s *productService) Create(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.Name = strings.TrimSpace(product.Name)

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateName) {
			return ErrDuplicateProductName
		}
		return err
	}
	return nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if cached, err := s.cacheSvc.GetProduct(ctx, id); err != nil {
		log.Printf("WARN: product cache read failed: %v", err)
	} else if cached != nil {
		return cached, nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.cacheSvc.SetProduct(ctx, product, productCacheTTL); err != nil {
		log.Printf("WARN: product cache write failed: %v", err)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, product *models.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	product.Name = strings.TrimSpace(product.Name)

	if err := s.productRepo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateName):
			return ErrDuplicateProductName
		case errors.Is(err, repositories.ErrNotFound):
			return ErrNotFound
		}
		return err
	}
	s.invalidate(ctx, product.ID)
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrReferenced):
			return ErrProductInUse
		case errors.Is(err, repositories.ErrNotFound):
			return ErrNotFound
		}
		return err
	}

	if product.PhotoKey != nil {
		if err := s.storage.DeletePhoto(ctx, s.photoBucket, *product.PhotoKey); err != nil {
			log.Printf("WARN: failed to delete photo for product %s: %v", id, err)
		}
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) FindAnyMatching(ctx context.Context, nameFilter string, limit, offset int) ([]*models.Product, error) {
	return s.productRepo.FindAnyMatching(ctx, nameFilter, limit, offset)
}

func (s *productService) CountAnyMatching(ctx context.Context, nameFilter string) (int, error) {
	return s.productRepo.CountAnyMatching(ctx, nameFilter)
}

// UploadPhoto stores the image in the object store and records its key on the
// product. A previous photo is removed best effort.
func (s *productService) UploadPhoto(ctx context.Context, id uuid.UUID, reader io.Reader, size int64, contentType string) (string, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("products/%s/%s", id, uuid.NewString())
	if err := s.storage.UploadPhoto(ctx, s.photoBucket, objectName, reader, size, contentType); err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	if err := s.productRepo.SetPhotoKey(ctx, id, &objectName); err != nil {
		return "", err
	}

	if product.PhotoKey != nil {
		if err := s.storage.DeletePhoto(ctx, s.photoBucket, *product.PhotoKey); err != nil {
			log.Printf("WARN: failed to delete previous photo for product %s: %v", id, err)
		}
	}
	s.invalidate(ctx, id)
	return objectName, nil
}

func (s *productService) PhotoURL(ctx context.Context, id uuid.UUID) (string, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if product.PhotoKey == nil {
		return "", ErrNotFound
	}
	return s.storage.GetPresignedURL(ctx, s.photoBucket, *product.PhotoKey, time.Hour)
}

func (s *productService) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product.PhotoKey == nil {
		return ErrNotFound
	}

	if err := s.storage.DeletePhoto(ctx, s.photoBucket, *product.PhotoKey); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	if err := s.productRepo.SetPhotoKey(ctx, id, nil); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cacheSvc.DeleteProduct(ctx, id); err != nil {
		log.Printf("WARN: product cache invalidation failed: %v", err)
	}
}
