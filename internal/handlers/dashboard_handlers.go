package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"bakeshop/internal/common"
	"bakeshop/internal/services"
)

// DashboardHandlers serves the sales and delivery reporting aggregates.
type DashboardHandlers struct {
	orderService services.OrderService
}

func NewDashboardHandlers(orderService services.OrderService) *DashboardHandlers {
	return &DashboardHandlers{orderService: orderService}
}

// GetDashboard handles GET /dashboard. Month and year default to the current
// ones.
func (h *DashboardHandlers) GetDashboard(c echo.Context) error {
	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	if monthParam := c.QueryParam("month"); monthParam != "" {
		parsed, err := strconv.Atoi(monthParam)
		if err != nil || parsed < 1 || parsed > 12 {
			return common.SendValidationError(c, "month", "month must be between 1 and 12")
		}
		month = parsed
	}
	if yearParam := c.QueryParam("year"); yearParam != "" {
		parsed, err := strconv.Atoi(yearParam)
		if err != nil || parsed < 2000 || parsed > now.Year()+1 {
			return common.SendValidationError(c, "year", "year is out of range")
		}
		year = parsed
	}

	data, err := h.orderService.GetDashboardData(c.Request().Context(), month, year)
	if err != nil {
		return common.SendServerError(c, "Failed to build dashboard data")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"dashboard": data,
		"month":     month,
		"year":      year,
	})
}
