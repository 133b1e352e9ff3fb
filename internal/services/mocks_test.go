package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bakeshop/internal/models"
	"bakeshop/internal/repositories"
)

// Mock repositories and services shared by the service tests.

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) FindAnyMatching(ctx context.Context, nameFilter string, limit, offset int) ([]*models.Product, error) {
	args := m.Called(ctx, nameFilter, limit, offset)
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) CountAnyMatching(ctx context.Context, nameFilter string) (int, error) {
	args := m.Called(ctx, nameFilter)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) SetPhotoKey(ctx context.Context, id uuid.UUID, photoKey *string) error {
	args := m.Called(ctx, id, photoKey)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) FindAnyMatching(ctx context.Context, filter string, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, filter, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) CountAnyMatching(ctx context.Context, filter string) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	args := m.Called(ctx, role)
	return args.Int(0), args.Error(1)
}

type MockPickupLocationRepository struct {
	mock.Mock
}

func (m *MockPickupLocationRepository) Create(ctx context.Context, location *models.PickupLocation) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockPickupLocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PickupLocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PickupLocation), args.Error(1)
}

func (m *MockPickupLocationRepository) Update(ctx context.Context, location *models.PickupLocation) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}

func (m *MockPickupLocationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPickupLocationRepository) FindAnyMatching(ctx context.Context, nameFilter string, limit, offset int) ([]*models.PickupLocation, error) {
	args := m.Called(ctx, nameFilter, limit, offset)
	return args.Get(0).([]*models.PickupLocation), args.Error(1)
}

func (m *MockPickupLocationRepository) CountAnyMatching(ctx context.Context, nameFilter string) (int, error) {
	args := m.Called(ctx, nameFilter)
	return args.Int(0), args.Error(1)
}

func (m *MockPickupLocationRepository) First(ctx context.Context) (*models.PickupLocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PickupLocation), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *models.Order, history *models.OrderHistoryItem) error {
	args := m.Called(ctx, order, history)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, history *models.OrderHistoryItem) error {
	args := m.Called(ctx, id, status, history)
	return args.Error(0)
}

func (m *MockOrderRepository) AppendHistory(ctx context.Context, item *models.OrderHistoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockOrderRepository) FindAnyMatching(ctx context.Context, filter *models.OrderSearchFilter) ([]*models.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) CountAnyMatching(ctx context.Context, filter *models.OrderSearchFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) FindDueFrom(ctx context.Context, from time.Time) ([]*models.Order, error) {
	args := m.Called(ctx, from)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) CountDueOn(ctx context.Context, date time.Time) (int, error) {
	args := m.Called(ctx, date)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) CountOverdue(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) CountDueOnWithStatusIn(ctx context.Context, date time.Time, statuses []string) (int, error) {
	args := m.Called(ctx, date, statuses)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepository) DeliveriesPerDay(ctx context.Context, month, year int) (map[int]int, error) {
	args := m.Called(ctx, month, year)
	return args.Get(0).(map[int]int), args.Error(1)
}

func (m *MockOrderRepository) DeliveriesPerMonth(ctx context.Context, year int) (map[int]int, error) {
	args := m.Called(ctx, year)
	return args.Get(0).(map[int]int), args.Error(1)
}

func (m *MockOrderRepository) SalesPerMonth(ctx context.Context, fromYear, toYear int) ([]repositories.MonthlyCount, error) {
	args := m.Called(ctx, fromYear, toYear)
	return args.Get(0).([]repositories.MonthlyCount), args.Error(1)
}

func (m *MockOrderRepository) ProductDeliveries(ctx context.Context, month, year, limit int) ([]models.ProductDelivery, error) {
	args := m.Called(ctx, month, year, limit)
	return args.Get(0).([]models.ProductDelivery), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	args := m.Called(ctx, product, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockCacheService) GetDashboard(ctx context.Context, month, year int) (*models.DashboardData, error) {
	args := m.Called(ctx, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardData), args.Error(1)
}

func (m *MockCacheService) SetDashboard(ctx context.Context, month, year int, data *models.DashboardData, ttl time.Duration) error {
	args := m.Called(ctx, month, year, data, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteDashboard(ctx context.Context, month, year int) error {
	args := m.Called(ctx, month, year)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateAllCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Keys(ctx context.Context, pattern string) ([]string, error) {
	args := m.Called(ctx, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockStorageService struct {
	mock.Mock
}

func (m *MockStorageService) UploadPhoto(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockStorageService) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, bucketName, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) DeletePhoto(ctx context.Context, bucketName, objectName string) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *MockStorageService) EnsureBucketExists(ctx context.Context, bucketName string) error {
	args := m.Called(ctx, bucketName)
	return args.Error(0)
}
