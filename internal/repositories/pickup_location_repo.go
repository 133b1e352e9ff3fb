package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bakeshop/internal/models"
)

type PickupLocationRepository interface {
	Create(ctx context.Context, location *models.PickupLocation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PickupLocation, error)
	Update(ctx context.Context, location *models.PickupLocation) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAnyMatching(ctx context.Context, nameFilter string, limit, offset int) ([]*models.PickupLocation, error)
	CountAnyMatching(ctx context.Context, nameFilter string) (int, error)
	First(ctx context.Context) (*models.PickupLocation, error)
}

type pickupLocationRepo struct {
	db Database
}

func NewPickupLocationRepo(db Database) PickupLocationRepository {
	return &pickupLocationRepo{db: db}
}

func (r *pickupLocationRepo) Create(ctx context.Context, location *models.PickupLocation) error {
	now := time.Now()
	location.CreatedAt = now
	location.UpdatedAt = now
	_, err := r.db.Exec(ctx,
		`INSERT INTO pickup_locations (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		location.ID, location.Name, location.CreatedAt, location.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to create pickup location: %w", err)
	}
	return nil
}

func (r *pickupLocationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PickupLocation, error) {
	location := &models.PickupLocation{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM pickup_locations WHERE id = $1`, id).Scan(
		&location.ID, &location.Name, &location.CreatedAt, &location.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return location, nil
}

func (r *pickupLocationRepo) Update(ctx context.Context, location *models.PickupLocation) error {
	location.UpdatedAt = time.Now()
	tag, err := r.db.Exec(ctx,
		`UPDATE pickup_locations SET name = $2, updated_at = $3 WHERE id = $1`,
		location.ID, location.Name, location.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to update pickup location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pickupLocationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pickup_locations WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return fmt.Errorf("failed to delete pickup location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pickupLocationRepo) FindAnyMatching(ctx context.Context, nameFilter string, limit, offset int) ([]*models.PickupLocation, error) {
	query := `SELECT id, name, created_at, updated_at
	          FROM pickup_locations
	          WHERE name ILIKE '%' || $1 || '%'
	          ORDER BY name
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, nameFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pickup locations: %w", err)
	}
	defer rows.Close()

	var locations []*models.PickupLocation
	for rows.Next() {
		location := &models.PickupLocation{}
		if err := rows.Scan(&location.ID, &location.Name, &location.CreatedAt, &location.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pickup location: %w", err)
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}

func (r *pickupLocationRepo) CountAnyMatching(ctx context.Context, nameFilter string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM pickup_locations WHERE name ILIKE '%' || $1 || '%'`, nameFilter).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pickup locations: %w", err)
	}
	return count, nil
}

// First returns the first location by name order. It backs the default
// pickup location used for new orders.
func (r *pickupLocationRepo) First(ctx context.Context) (*models.PickupLocation, error) {
	location := &models.PickupLocation{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM pickup_locations ORDER BY name LIMIT 1`).Scan(
		&location.ID, &location.Name, &location.CreatedAt, &location.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return location, nil
}
