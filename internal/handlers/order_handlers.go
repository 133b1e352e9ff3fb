package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"bakeshop/internal/common"
	"bakeshop/internal/models"
	"bakeshop/internal/services"
)

const maxItemQuantity = 10000

// OrderHandlers handles HTTP requests for customer orders.
type OrderHandlers struct {
	orderService services.OrderService
}

func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

type orderItemRequest struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Comment   *string `json:"comment"`
}

type orderRequest struct {
	DueDate          string             `json:"due_date"` // YYYY-MM-DD
	DueTime          string             `json:"due_time"` // HH:MM
	PickupLocationID string             `json:"pickup_location_id"`
	CustomerName     string             `json:"customer_name"`
	CustomerPhone    string             `json:"customer_phone"`
	CustomerDetails  *string            `json:"customer_details"`
	Items            []orderItemRequest `json:"items"`
}

// bindOrder validates the request payload and converts it into a model. Due
// date, due time and pickup location are optional and filled with defaults by
// the service layer.
func bindOrder(c echo.Context, req *orderRequest) (*models.Order, error) {
	if err := c.Bind(req); err != nil {
		return nil, common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.CustomerName, "customer_name"); err != nil {
		return nil, common.SendValidationError(c, "customer_name", err.Error())
	}
	if err := common.ValidateRequiredString(req.CustomerPhone, "customer_phone"); err != nil {
		return nil, common.SendValidationError(c, "customer_phone", err.Error())
	}
	if err := common.ValidateOptionalString(req.CustomerDetails, "customer_details", 1000); err != nil {
		return nil, common.SendValidationError(c, "customer_details", err.Error())
	}
	if err := common.ValidateDateFormat(req.DueDate, "due_date"); err != nil {
		return nil, common.SendValidationError(c, "due_date", err.Error())
	}
	if err := common.ValidateTimeOfDay(req.DueTime, "due_time"); err != nil {
		return nil, common.SendValidationError(c, "due_time", err.Error())
	}
	if len(req.Items) == 0 {
		return nil, common.SendValidationError(c, "items", "order needs at least one item")
	}

	order := &models.Order{
		DueTime:         req.DueTime,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerDetails: req.CustomerDetails,
	}
	if req.DueDate != "" {
		dueDate, _ := time.Parse("2006-01-02", req.DueDate)
		order.DueDate = dueDate
	}
	if req.PickupLocationID != "" {
		locationID, err := common.ValidateUUID(req.PickupLocationID, "pickup_location_id")
		if err != nil {
			return nil, common.SendClientError(c, err.Error())
		}
		order.PickupLocationID = locationID
	}

	for _, item := range req.Items {
		productID, err := common.ValidateUUID(item.ProductID, "product_id")
		if err != nil {
			return nil, common.SendClientError(c, err.Error())
		}
		if err := common.ValidatePositiveInteger(item.Quantity, "quantity", maxItemQuantity); err != nil {
			return nil, common.SendValidationError(c, "quantity", err.Error())
		}
		if err := common.ValidateOptionalString(item.Comment, "comment", 255); err != nil {
			return nil, common.SendValidationError(c, "comment", err.Error())
		}
		order.Items = append(order.Items, &models.OrderItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			Comment:   item.Comment,
		})
	}
	return order, nil
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req orderRequest
	order, bindErr := bindOrder(c, &req)
	if bindErr != nil {
		return bindErr
	}

	if err := h.orderService.Create(ctx, order, userID); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Order created successfully",
		"order":   order,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Order")
		}
		return common.SendServerError(c, "Failed to load order")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"order": order,
	})
}

// UpdateOrder handles PUT /orders/:id
func (h *OrderHandlers) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req orderRequest
	order, bindErr := bindOrder(c, &req)
	if bindErr != nil {
		return bindErr
	}
	order.ID = id

	if err := h.orderService.Update(ctx, order, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "Order")
		case errors.Is(err, services.ErrInvalidTransition):
			return common.SendUnprocessableError(c, "Delivered or cancelled orders cannot be edited")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order updated successfully",
		"order":   order,
	})
}

// ListOrders handles GET /orders
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	filter := &models.OrderSearchFilter{
		Query:     common.SanitizeSearchQuery(c.QueryParam("q")),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Limit:     limit,
		Offset:    offset,
	}
	if dueAfter := c.QueryParam("due_after"); dueAfter != "" {
		if err := common.ValidateDateFormat(dueAfter, "due_after"); err != nil {
			return common.SendValidationError(c, "due_after", err.Error())
		}
		date, _ := time.Parse("2006-01-02", dueAfter)
		filter.DueAfter = &date
	}
	if status := c.QueryParam("status"); status != "" {
		if err := common.ValidateOrderStatus(status); err != nil {
			return common.SendValidationError(c, "status", err.Error())
		}
		filter.Status = &status
	}

	orders, err := h.orderService.FindAnyMatching(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to list orders")
	}
	total, err := h.orderService.CountAnyMatching(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to count orders")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders":      orders,
		"total_count": total,
		"limit":       limit,
		"offset":      offset,
	})
}

// ListUpcoming handles GET /orders/upcoming
func (h *OrderHandlers) ListUpcoming(c echo.Context) error {
	orders, err := h.orderService.DueFromToday(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to list upcoming orders")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
	})
}

// AddComment handles POST /orders/:id/comments
func (h *OrderHandlers) AddComment(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Message, "message"); err != nil {
		return common.SendValidationError(c, "message", err.Error())
	}

	order, err := h.orderService.AddComment(ctx, id, req.Message, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Order")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Comment added",
		"order":   order,
	})
}

type transitionFunc func(c echo.Context, orderID, userID uuid.UUID) (*models.Order, error)

func (h *OrderHandlers) transition(c echo.Context, fn transitionFunc) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	order, err := fn(c, id, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "Order")
		case errors.Is(err, services.ErrInvalidTransition):
			return common.SendUnprocessableError(c, "Order cannot move to the requested status from its current one")
		}
		return common.SendServerError(c, "Failed to update order status")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order status updated",
		"order":   order,
	})
}

// ConfirmOrder handles POST /orders/:id/confirm
func (h *OrderHandlers) ConfirmOrder(c echo.Context) error {
	return h.transition(c, func(c echo.Context, orderID, userID uuid.UUID) (*models.Order, error) {
		return h.orderService.Confirm(c.Request().Context(), orderID, userID)
	})
}

// MarkOrderReady handles POST /orders/:id/ready
func (h *OrderHandlers) MarkOrderReady(c echo.Context) error {
	return h.transition(c, func(c echo.Context, orderID, userID uuid.UUID) (*models.Order, error) {
		return h.orderService.MarkReady(c.Request().Context(), orderID, userID)
	})
}

// DeliverOrder handles POST /orders/:id/deliver
func (h *OrderHandlers) DeliverOrder(c echo.Context) error {
	return h.transition(c, func(c echo.Context, orderID, userID uuid.UUID) (*models.Order, error) {
		return h.orderService.Deliver(c.Request().Context(), orderID, userID)
	})
}

// MarkOrderProblem handles POST /orders/:id/problem
func (h *OrderHandlers) MarkOrderProblem(c echo.Context) error {
	return h.transition(c, func(c echo.Context, orderID, userID uuid.UUID) (*models.Order, error) {
		return h.orderService.MarkProblem(c.Request().Context(), orderID, userID)
	})
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandlers) CancelOrder(c echo.Context) error {
	return h.transition(c, func(c echo.Context, orderID, userID uuid.UUID) (*models.Order, error) {
		return h.orderService.Cancel(c.Request().Context(), orderID, userID)
	})
}
