package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"bakeshop/internal/caching"
	"bakeshop/internal/models"
	"bakeshop/internal/repositories"
)

const (
	dashboardCacheTTL = 5 * time.Minute
	defaultDueTime    = "16:00"
	productRankLimit  = 10
)

// notAvailableStatuses are the states in which an order due today cannot be
// handed to the customer.
var notAvailableStatuses = []string{
	models.OrderStatusNew, models.OrderStatusConfirmed, models.OrderStatusProblem,
}

// allowedFrom maps a target status to the statuses an order may move from.
var allowedFrom = map[string][]string{
	models.OrderStatusConfirmed: {models.OrderStatusNew},
	models.OrderStatusReady:     {models.OrderStatusConfirmed},
	models.OrderStatusDelivered: {models.OrderStatusReady},
	models.OrderStatusProblem: {
		models.OrderStatusNew, models.OrderStatusConfirmed, models.OrderStatusReady,
	},
	models.OrderStatusCancelled: {
		models.OrderStatusNew, models.OrderStatusConfirmed,
		models.OrderStatusReady, models.OrderStatusProblem,
	},
}

type OrderService interface {
	Create(ctx context.Context, order *models.Order, createdBy uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order, updatedBy uuid.UUID) error
	AddComment(ctx context.Context, orderID uuid.UUID, message string, createdBy uuid.UUID) (*models.Order, error)

	Confirm(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	MarkReady(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	Deliver(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	MarkProblem(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)

	FindAnyMatching(ctx context.Context, filter *models.OrderSearchFilter) ([]*models.Order, error)
	CountAnyMatching(ctx context.Context, filter *models.OrderSearchFilter) (int, error)
	DueFromToday(ctx context.Context) ([]*models.Order, error)
	CountOverdue(ctx context.Context) (int, error)

	GetDashboardData(ctx context.Context, month, year int) (*models.DashboardData, error)
	WarmDashboardCache(ctx context.Context) error
}

type orderService struct {
	orderRepo    repositories.OrderRepository
	productRepo  repositories.ProductRepository
	locationRepo repositories.PickupLocationRepository
	cacheSvc     caching.CacheService
}

func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository,
	locationRepo repositories.PickupLocationRepository, cacheSvc caching.CacheService) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		cacheSvc:     cacheSvc,
	}
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Create stores a new order in status new with an "Order placed" history
// entry. Due date defaults to today at 16:00, pickup location to the default
// one, and the total is computed from current product prices.
func (s *orderService) Create(ctx context.Context, order *models.Order, createdBy uuid.UUID) error {
	if strings.TrimSpace(order.CustomerName) == "" {
		return fmt.Errorf("customer name is required")
	}
	if strings.TrimSpace(order.CustomerPhone) == "" {
		return fmt.Errorf("customer phone is required")
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("order needs at least one item")
	}

	if order.DueDate.IsZero() {
		order.DueDate = today()
	}
	if order.DueTime == "" {
		order.DueTime = defaultDueTime
	}
	if order.PickupLocationID == uuid.Nil {
		location, err := s.locationRepo.First(ctx)
		if err != nil {
			return fmt.Errorf("no pickup location available: %w", err)
		}
		order.PickupLocationID = location.ID
	} else if _, err := s.locationRepo.GetByID(ctx, order.PickupLocationID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("pickup location does not exist")
		}
		return err
	}

	total, err := s.priceItems(ctx, order.Items)
	if err != nil {
		return err
	}

	order.ID = uuid.New()
	order.Status = models.OrderStatusNew
	order.TotalCents = total
	order.CreatedBy = createdBy
	for _, item := range order.Items {
		item.ID = uuid.New()
		item.OrderID = order.ID
	}
	order.History = []*models.OrderHistoryItem{{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Status:    models.OrderStatusNew,
		Message:   "Order placed",
		CreatedBy: createdBy,
	}}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return err
	}
	s.invalidateDashboard(ctx, order.DueDate)
	return nil
}

func (s *orderService) priceItems(ctx context.Context, items []*models.OrderItem) (int, error) {
	total := 0
	for _, item := range items {
		if item.Quantity <= 0 {
			return 0, fmt.Errorf("item quantity must be positive")
		}
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return 0, fmt.Errorf("product %s does not exist", item.ProductID)
			}
			return 0, err
		}
		total += product.PriceCents * item.Quantity
	}
	return total, nil
}

func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// Update rewrites customer data, due date and items of an order that is not
// yet delivered or cancelled. Status changes go through the transition
// methods instead.
func (s *orderService) Update(ctx context.Context, order *models.Order, updatedBy uuid.UUID) error {
	existing, err := s.GetByID(ctx, order.ID)
	if err != nil {
		return err
	}
	if existing.Status == models.OrderStatusDelivered || existing.Status == models.OrderStatusCancelled {
		return ErrInvalidTransition
	}

	if strings.TrimSpace(order.CustomerName) == "" {
		return fmt.Errorf("customer name is required")
	}
	if strings.TrimSpace(order.CustomerPhone) == "" {
		return fmt.Errorf("customer phone is required")
	}
	if len(order.Items) == 0 {
		return fmt.Errorf("order needs at least one item")
	}
	if order.DueDate.IsZero() {
		order.DueDate = existing.DueDate
	}
	if order.DueTime == "" {
		order.DueTime = existing.DueTime
	}
	if order.PickupLocationID == uuid.Nil {
		order.PickupLocationID = existing.PickupLocationID
	} else if _, err := s.locationRepo.GetByID(ctx, order.PickupLocationID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("pickup location does not exist")
		}
		return err
	}

	total, err := s.priceItems(ctx, order.Items)
	if err != nil {
		return err
	}
	order.TotalCents = total
	order.Status = existing.Status
	order.CreatedBy = existing.CreatedBy
	for _, item := range order.Items {
		item.ID = uuid.New()
		item.OrderID = order.ID
	}

	history := &models.OrderHistoryItem{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Status:    existing.Status,
		Message:   "Order was edited",
		CreatedBy: updatedBy,
	}
	if err := s.orderRepo.Update(ctx, order, history); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateDashboard(ctx, existing.DueDate)
	s.invalidateDashboard(ctx, order.DueDate)
	return nil
}

func (s *orderService) AddComment(ctx context.Context, orderID uuid.UUID, message string, createdBy uuid.UUID) (*models.Order, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("comment message is required")
	}
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	item := &models.OrderHistoryItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		Status:    order.Status,
		Message:   strings.TrimSpace(message),
		CreatedBy: createdBy,
	}
	if err := s.orderRepo.AppendHistory(ctx, item); err != nil {
		return nil, err
	}
	order.History = append(order.History, item)
	return order, nil
}

func (s *orderService) Confirm(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusConfirmed, "Order confirmed", userID)
}

func (s *orderService) MarkReady(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusReady, "Order marked as ready", userID)
}

func (s *orderService) Deliver(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusDelivered, "Order delivered", userID)
}

func (s *orderService) MarkProblem(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusProblem, "Order marked as problem", userID)
}

func (s *orderService) Cancel(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return s.transition(ctx, orderID, models.OrderStatusCancelled, "Order cancelled", userID)
}

func (s *orderService) transition(ctx context.Context, orderID uuid.UUID, target, message string, userID uuid.UUID) (*models.Order, error) {
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, from := range allowedFrom[target] {
		if order.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}

	history := &models.OrderHistoryItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		Status:    target,
		Message:   message,
		CreatedBy: userID,
	}
	if err := s.orderRepo.UpdateStatus(ctx, orderID, target, history); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	order.Status = target
	order.History = append(order.History, history)
	s.invalidateDashboard(ctx, order.DueDate)
	return order, nil
}

func (s *orderService) FindAnyMatching(ctx context.Context, filter *models.OrderSearchFilter) ([]*models.Order, error) {
	return s.orderRepo.FindAnyMatching(ctx, filter)
}

func (s *orderService) CountAnyMatching(ctx context.Context, filter *models.OrderSearchFilter) (int, error) {
	return s.orderRepo.CountAnyMatching(ctx, filter)
}

func (s *orderService) DueFromToday(ctx context.Context) ([]*models.Order, error) {
	return s.orderRepo.FindDueFrom(ctx, today())
}

func (s *orderService) CountOverdue(ctx context.Context) (int, error) {
	return s.orderRepo.CountOverdue(ctx, today())
}

// GetDashboardData assembles the reporting aggregates for a month, serving
// from cache when possible. Cache failures degrade to direct queries.
func (s *orderService) GetDashboardData(ctx context.Context, month, year int) (*models.DashboardData, error) {
	if cached, err := s.cacheSvc.GetDashboard(ctx, month, year); err != nil {
		log.Printf("WARN: dashboard cache read failed: %v", err)
	} else if cached != nil {
		return cached, nil
	}

	data, err := s.buildDashboardData(ctx, month, year)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetDashboard(ctx, month, year, data, dashboardCacheTTL); err != nil {
		log.Printf("WARN: dashboard cache write failed: %v", err)
	}
	return data, nil
}

func (s *orderService) buildDashboardData(ctx context.Context, month, year int) (*models.DashboardData, error) {
	now := today()
	tomorrow := now.AddDate(0, 0, 1)

	stats := models.DeliveryStats{}
	var err error
	if stats.DueToday, err = s.orderRepo.CountDueOn(ctx, now); err != nil {
		return nil, err
	}
	if stats.DueTomorrow, err = s.orderRepo.CountDueOn(ctx, tomorrow); err != nil {
		return nil, err
	}
	if stats.DeliveredToday, err = s.orderRepo.CountDueOnWithStatusIn(ctx, now,
		[]string{models.OrderStatusDelivered}); err != nil {
		return nil, err
	}
	if stats.NotAvailableToday, err = s.orderRepo.CountDueOnWithStatusIn(ctx, now, notAvailableStatuses); err != nil {
		return nil, err
	}
	if stats.NewOrders, err = s.orderRepo.CountByStatus(ctx, models.OrderStatusNew); err != nil {
		return nil, err
	}

	perDay, err := s.orderRepo.DeliveriesPerDay(ctx, month, year)
	if err != nil {
		return nil, err
	}
	daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	deliveriesThisMonth := denseBuckets(perDay, daysInMonth)

	perMonth, err := s.orderRepo.DeliveriesPerMonth(ctx, year)
	if err != nil {
		return nil, err
	}
	deliveriesThisYear := denseBuckets(perMonth, 12)

	salesRows, err := s.orderRepo.SalesPerMonth(ctx, year-2, year)
	if err != nil {
		return nil, err
	}
	salesPerMonth := buildSalesPerMonth(salesRows, year, now)

	productDeliveries, err := s.orderRepo.ProductDeliveries(ctx, month, year, productRankLimit)
	if err != nil {
		return nil, err
	}

	return &models.DashboardData{
		DeliveryStats:       stats,
		DeliveriesThisMonth: deliveriesThisMonth,
		DeliveriesThisYear:  deliveriesThisYear,
		SalesPerMonth:       salesPerMonth,
		ProductDeliveries:   productDeliveries,
	}, nil
}

// denseBuckets converts a sparse 1-based bucket map into a fixed-size slice
// where empty buckets are nil.
func denseBuckets(counts map[int]int, size int) []*int {
	dense := make([]*int, size)
	for bucket, count := range counts {
		if bucket < 1 || bucket > size {
			continue
		}
		c := count
		dense[bucket-1] = &c
	}
	return dense
}

// buildSalesPerMonth lays out three years of monthly sales, newest year
// first. The still-running month of the current year is left nil since its
// figure would be misleadingly low.
func buildSalesPerMonth(rows []repositories.MonthlyCount, year int, now time.Time) [3][]*int {
	var sales [3][]*int
	for i := range sales {
		sales[i] = make([]*int, 12)
	}
	for _, row := range rows {
		idx := year - row.Year
		if idx < 0 || idx > 2 || row.Month < 1 || row.Month > 12 {
			continue
		}
		if row.Year == now.Year() && row.Month >= int(now.Month()) {
			continue
		}
		c := row.Count
		sales[idx][row.Month-1] = &c
	}
	return sales
}

// WarmDashboardCache refreshes the current month's dashboard entry so the
// first viewer of the day does not pay the aggregation cost.
func (s *orderService) WarmDashboardCache(ctx context.Context) error {
	now := time.Now()
	month, year := int(now.Month()), now.Year()

	data, err := s.buildDashboardData(ctx, month, year)
	if err != nil {
		return err
	}
	return s.cacheSvc.SetDashboard(ctx, month, year, data, dashboardCacheTTL)
}

func (s *orderService) invalidateDashboard(ctx context.Context, dueDate time.Time) {
	now := time.Now()
	if err := s.cacheSvc.DeleteDashboard(ctx, int(now.Month()), now.Year()); err != nil {
		log.Printf("WARN: dashboard cache invalidation failed: %v", err)
	}
	if dueDate.Month() != now.Month() || dueDate.Year() != now.Year() {
		if err := s.cacheSvc.DeleteDashboard(ctx, int(dueDate.Month()), dueDate.Year()); err != nil {
			log.Printf("WARN: dashboard cache invalidation failed: %v", err)
		}
	}
}
