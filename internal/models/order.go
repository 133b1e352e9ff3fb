package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusNew       = "new"
	OrderStatusConfirmed = "confirmed"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusProblem   = "problem"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []string{
	OrderStatusNew, OrderStatusConfirmed, OrderStatusReady,
	OrderStatusDelivered, OrderStatusProblem, OrderStatusCancelled,
}

type Order struct {
	ID               uuid.UUID           `json:"id" db:"id"`
	DueDate          time.Time           `json:"due_date" db:"due_date"`
	DueTime          string              `json:"due_time" db:"due_time"` // HH:MM
	PickupLocationID uuid.UUID           `json:"pickup_location_id" db:"pickup_location_id"`
	CustomerName     string              `json:"customer_name" db:"customer_name"`
	CustomerPhone    string              `json:"customer_phone" db:"customer_phone"`
	CustomerDetails  *string             `json:"customer_details,omitempty" db:"customer_details"`
	Status           string              `json:"status" db:"status"`
	TotalCents       int                 `json:"total_cents" db:"total_cents"`
	CreatedBy        uuid.UUID           `json:"created_by" db:"created_by"`
	Items            []*OrderItem        `json:"items,omitempty"`
	History          []*OrderHistoryItem `json:"history,omitempty"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
}

type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
}

type OrderHistoryItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	Status    string    `json:"status" db:"status"`
	Message   string    `json:"message" db:"message"`
	CreatedBy uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OrderSearchFilter holds search and filter criteria for order list queries.
type OrderSearchFilter struct {
	Query     string     `json:"query,omitempty"`      // customer name contains, case-insensitive
	DueAfter  *time.Time `json:"due_after,omitempty"`  // due_date strictly after
	Status    *string    `json:"status,omitempty"`     // status filter
	SortBy    string     `json:"sort_by,omitempty"`    // due_date, created_at
	SortOrder string     `json:"sort_order,omitempty"` // asc, desc
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}
