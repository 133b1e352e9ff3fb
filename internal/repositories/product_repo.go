package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bakeshop/internal/models"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindAnyMatching(ctx context.Context, nameFilter string, limit, offset int) ([]*models.Product, error)
	CountAnyMatching(ctx context.Context, nameFilter string) (int, error)
	SetPhotoKey(ctx context.Context, id uuid.UUID, photoKey *string) error
}

type productRepo struct {
	db Database
}

func NewProductRepo(db Database) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `INSERT INTO products (id, name, price_cents, photo_key, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now
	_, err := r.db.Exec(ctx, query,
		product.ID, product.Name, product.PriceCents, product.PhotoKey, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT id, name, price_cents, photo_key, created_at, updated_at
	          FROM products WHERE id = $1`
	product := &models.Product{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&product.ID, &product.Name, &product.PriceCents, &product.PhotoKey,
		&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `UPDATE products SET name = $2, price_cents = $3, updated_at = $4 WHERE id = $1`
	product.UpdatedAt = time.Now()
	tag, err := r.db.Exec(ctx, query, product.ID, product.Name, product.PriceCents, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FindAnyMatching lists products whose name contains nameFilter, case
// insensitive, ordered by name. An empty filter matches everything.
func (r *productRepo) FindAnyMatching(ctx context.Context, nameFilter string, limit, offset int) ([]*models.Product, error) {
	query := `SELECT id, name, price_cents, photo_key, created_at, updated_at
	          FROM products
	          WHERE name ILIKE '%' || $1 || '%'
	          ORDER BY name
	          LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, nameFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(&product.ID, &product.Name, &product.PriceCents, &product.PhotoKey,
			&product.CreatedAt, &product.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) CountAnyMatching(ctx context.Context, nameFilter string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE name ILIKE '%' || $1 || '%'`, nameFilter).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (r *productRepo) SetPhotoKey(ctx context.Context, id uuid.UUID, photoKey *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET photo_key = $2, updated_at = $3 WHERE id = $1`, id, photoKey, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update product photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
