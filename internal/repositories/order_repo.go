package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"bakeshop/internal/models"
)

// MonthlyCount is one (year, month) bucket of an aggregation query.
type MonthlyCount struct {
	Year  int
	Month int
	Count int
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order, history *models.OrderHistoryItem) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, history *models.OrderHistoryItem) error
	AppendHistory(ctx context.Context, item *models.OrderHistoryItem) error
	FindAnyMatching(ctx context.Context, filter *models.OrderSearchFilter) ([]*models.Order, error)
	CountAnyMatching(ctx context.Context, filter *models.OrderSearchFilter) (int, error)
	FindDueFrom(ctx context.Context, from time.Time) ([]*models.Order, error)

	CountDueOn(ctx context.Context, date time.Time) (int, error)
	CountOverdue(ctx context.Context, asOf time.Time) (int, error)
	CountDueOnWithStatusIn(ctx context.Context, date time.Time, statuses []string) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	DeliveriesPerDay(ctx context.Context, month, year int) (map[int]int, error)
	DeliveriesPerMonth(ctx context.Context, year int) (map[int]int, error)
	SalesPerMonth(ctx context.Context, fromYear, toYear int) ([]MonthlyCount, error)
	ProductDeliveries(ctx context.Context, month, year, limit int) ([]models.ProductDelivery, error)
}

type orderRepo struct {
	db Database
}

func NewOrderRepo(db Database) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, due_date, due_time, pickup_location_id, customer_name, customer_phone,
	customer_details, status, total_cents, created_by, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.DueDate, &order.DueTime, &order.PickupLocationID,
		&order.CustomerName, &order.CustomerPhone, &order.CustomerDetails, &order.Status,
		&order.TotalCents, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Create writes the order, its items and its first history entry in a single
// transaction. Items and history are expected to carry ids already.
func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	query := `INSERT INTO orders (id, due_date, due_time, pickup_location_id, customer_name, customer_phone,
	              customer_details, status, total_cents, created_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = tx.Exec(ctx, query,
		order.ID, order.DueDate, order.DueTime, order.PickupLocationID, order.CustomerName,
		order.CustomerPhone, order.CustomerDetails, order.Status, order.TotalCents,
		order.CreatedBy, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}
	for _, h := range order.History {
		if err := insertHistory(ctx, tx, h); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func insertItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, items []*models.OrderItem) error {
	for _, item := range items {
		item.OrderID = orderID
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, comment) VALUES ($1, $2, $3, $4, $5)`,
			item.ID, item.OrderID, item.ProductID, item.Quantity, item.Comment)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, item *models.OrderHistoryItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO order_history (id, order_id, status, message, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.OrderID, item.Status, item.Message, item.CreatedBy, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order history: %w", err)
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	if err := r.loadItems(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) loadItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*models.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, product_id, quantity, comment FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Comment); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return rows.Err()
}

func (r *orderRepo) loadHistory(ctx context.Context, order *models.Order) error {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, status, message, created_by, created_at
		 FROM order_history WHERE order_id = $1 ORDER BY created_at`, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load order history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &models.OrderHistoryItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.Status, &item.Message,
			&item.CreatedBy, &item.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan order history: %w", err)
		}
		order.History = append(order.History, item)
	}
	return rows.Err()
}

// Update rewrites the order row and its items and appends a history entry,
// all in one transaction.
func (r *orderRepo) Update(ctx context.Context, order *models.Order, history *models.OrderHistoryItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order.UpdatedAt = time.Now()
	query := `UPDATE orders SET due_date = $2, due_time = $3, pickup_location_id = $4, customer_name = $5,
	              customer_phone = $6, customer_details = $7, total_cents = $8, updated_at = $9
	          WHERE id = $1`
	tag, err := tx.Exec(ctx, query,
		order.ID, order.DueDate, order.DueTime, order.PickupLocationID, order.CustomerName,
		order.CustomerPhone, order.CustomerDetails, order.TotalCents, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("failed to clear order items: %w", err)
	}
	if err := insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}
	if history != nil {
		if err := insertHistory(ctx, tx, history); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, history *models.OrderHistoryItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if history != nil {
		if err := insertHistory(ctx, tx, history); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *orderRepo) AppendHistory(ctx context.Context, item *models.OrderHistoryItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO order_history (id, order_id, status, message, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.OrderID, item.Status, item.Message, item.CreatedBy, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append order history: %w", err)
	}
	return nil
}

func buildOrderConditions(filter *models.OrderSearchFilter) (string, []any) {
	conditions := ""
	args := []any{}
	conditionCount := 0

	if filter.Query != "" {
		conditionCount++
		conditions += fmt.Sprintf(" AND customer_name ILIKE '%%' || $%d || '%%'", conditionCount)
		args = append(args, filter.Query)
	}
	if filter.DueAfter != nil {
		conditionCount++
		conditions += fmt.Sprintf(" AND due_date > $%d", conditionCount)
		args = append(args, *filter.DueAfter)
	}
	if filter.Status != nil {
		conditionCount++
		conditions += fmt.Sprintf(" AND status = $%d", conditionCount)
		args = append(args, *filter.Status)
	}
	return conditions, args
}

func orderSortClause(filter *models.OrderSearchFilter) string {
	sortBy := "due_date"
	if filter.SortBy == "created_at" {
		sortBy = "created_at"
	}
	sortOrder := "ASC"
	if filter.SortOrder == "desc" {
		sortOrder = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, due_time %s", sortBy, sortOrder, sortOrder)
}

func (r *orderRepo) FindAnyMatching(ctx context.Context, filter *models.OrderSearchFilter) ([]*models.Order, error) {
	conditions, args := buildOrderConditions(filter)
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1` + conditions + orderSortClause(filter)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) CountAnyMatching(ctx context.Context, filter *models.OrderSearchFilter) (int, error) {
	conditions, args := buildOrderConditions(filter)
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE 1=1`+conditions, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// FindDueFrom lists orders due on or after the given date, soonest first,
// with their items. It backs the upcoming-orders board.
func (r *orderRepo) FindDueFrom(ctx context.Context, from time.Time) ([]*models.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE due_date >= $1 ORDER BY due_date, due_time`, from)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) CountDueOn(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE due_date = $1`, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders due: %w", err)
	}
	return count, nil
}

// CountOverdue counts orders past their due date that were never confirmed
// ready, delivered or resolved.
func (r *orderRepo) CountOverdue(ctx context.Context, asOf time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE due_date < $1 AND status = ANY($2)`,
		asOf, []string{models.OrderStatusNew, models.OrderStatusConfirmed}).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue orders: %w", err)
	}
	return count, nil
}

func (r *orderRepo) CountDueOnWithStatusIn(ctx context.Context, date time.Time, statuses []string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE due_date = $1 AND status = ANY($2)`, date, statuses).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders due by status: %w", err)
	}
	return count, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders by status: %w", err)
	}
	return count, nil
}

// DeliveriesPerDay counts delivered orders per day of month. Days with no
// deliveries are absent from the map.
func (r *orderRepo) DeliveriesPerDay(ctx context.Context, month, year int) (map[int]int, error) {
	query := `SELECT EXTRACT(DAY FROM due_date)::int AS day, COUNT(*)
	          FROM orders
	          WHERE status = $1 AND EXTRACT(MONTH FROM due_date) = $2 AND EXTRACT(YEAR FROM due_date) = $3
	          GROUP BY day`
	return r.bucketCounts(ctx, query, models.OrderStatusDelivered, month, year)
}

// DeliveriesPerMonth counts delivered orders per month of year. Months with
// no deliveries are absent from the map.
func (r *orderRepo) DeliveriesPerMonth(ctx context.Context, year int) (map[int]int, error) {
	query := `SELECT EXTRACT(MONTH FROM due_date)::int AS month, COUNT(*)
	          FROM orders
	          WHERE status = $1 AND EXTRACT(YEAR FROM due_date) = $2
	          GROUP BY month`
	return r.bucketCounts(ctx, query, models.OrderStatusDelivered, year)
}

func (r *orderRepo) bucketCounts(ctx context.Context, query string, args ...any) (map[int]int, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate deliveries: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var bucket, count int
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("failed to scan delivery bucket: %w", err)
		}
		counts[bucket] = count
	}
	return counts, rows.Err()
}

// SalesPerMonth counts delivered orders per (year, month) over an inclusive
// year range.
func (r *orderRepo) SalesPerMonth(ctx context.Context, fromYear, toYear int) ([]MonthlyCount, error) {
	query := `SELECT EXTRACT(YEAR FROM due_date)::int AS year, EXTRACT(MONTH FROM due_date)::int AS month, COUNT(*)
	          FROM orders
	          WHERE status = $1 AND EXTRACT(YEAR FROM due_date) BETWEEN $2 AND $3
	          GROUP BY year, month
	          ORDER BY year, month`
	rows, err := r.db.Query(ctx, query, models.OrderStatusDelivered, fromYear, toYear)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	defer rows.Close()

	var counts []MonthlyCount
	for rows.Next() {
		var mc MonthlyCount
		if err := rows.Scan(&mc.Year, &mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan sales bucket: %w", err)
		}
		counts = append(counts, mc)
	}
	return counts, rows.Err()
}

// ProductDeliveries sums delivered quantities per product for a month,
// largest first.
func (r *orderRepo) ProductDeliveries(ctx context.Context, month, year, limit int) ([]models.ProductDelivery, error) {
	query := `SELECT p.name, SUM(oi.quantity)::int AS quantity
	          FROM order_items oi
	          JOIN orders o ON o.id = oi.order_id
	          JOIN products p ON p.id = oi.product_id
	          WHERE o.status = $1 AND EXTRACT(MONTH FROM o.due_date) = $2 AND EXTRACT(YEAR FROM o.due_date) = $3
	          GROUP BY p.name
	          ORDER BY quantity DESC
	          LIMIT $4`
	rows, err := r.db.Query(ctx, query, models.OrderStatusDelivered, month, year, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate product deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []models.ProductDelivery
	for rows.Next() {
		var pd models.ProductDelivery
		if err := rows.Scan(&pd.ProductName, &pd.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product delivery: %w", err)
		}
		deliveries = append(deliveries, pd)
	}
	return deliveries, rows.Err()
}
