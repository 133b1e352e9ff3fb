package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bakeshop/internal/common"
	"bakeshop/internal/models"
	"bakeshop/internal/services"
)

// PickupLocationHandlers handles HTTP requests for pickup locations.
type PickupLocationHandlers struct {
	locationService services.PickupLocationService
}

func NewPickupLocationHandlers(locationService services.PickupLocationService) *PickupLocationHandlers {
	return &PickupLocationHandlers{locationService: locationService}
}

// ListLocations handles GET /pickup-locations
func (h *PickupLocationHandlers) ListLocations(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	filter := common.SanitizeSearchQuery(c.QueryParam("q"))

	locations, err := h.locationService.FindAnyMatching(ctx, filter, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list pickup locations")
	}
	total, err := h.locationService.CountAnyMatching(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to count pickup locations")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"pickup_locations": locations,
		"total_count":      total,
		"limit":            limit,
		"offset":           offset,
	})
}

// GetDefaultLocation handles GET /pickup-locations/default
func (h *PickupLocationHandlers) GetDefaultLocation(c echo.Context) error {
	location, err := h.locationService.GetDefault(c.Request().Context())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Pickup location")
		}
		return common.SendServerError(c, "Failed to load default pickup location")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"pickup_location": location,
	})
}

// GetLocation handles GET /pickup-locations/:id
func (h *PickupLocationHandlers) GetLocation(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	location, err := h.locationService.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Pickup location")
		}
		return common.SendServerError(c, "Failed to load pickup location")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"pickup_location": location,
	})
}

// CreateLocation handles POST /pickup-locations
func (h *PickupLocationHandlers) CreateLocation(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	location := &models.PickupLocation{Name: req.Name}
	if err := h.locationService.Create(c.Request().Context(), location); err != nil {
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":         "Pickup location created successfully",
		"pickup_location": location,
	})
}

// UpdateLocation handles PUT /pickup-locations/:id
func (h *PickupLocationHandlers) UpdateLocation(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	location := &models.PickupLocation{ID: id, Name: req.Name}
	if err := h.locationService.Update(c.Request().Context(), location); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "Pickup location")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":         "Pickup location updated successfully",
		"pickup_location": location,
	})
}

// DeleteLocation handles DELETE /pickup-locations/:id
func (h *PickupLocationHandlers) DeleteLocation(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.locationService.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "Pickup location")
		case errors.Is(err, services.ErrLocationInUse):
			return common.SendConflictError(c, "Pickup location is referenced by existing orders and cannot be deleted")
		}
		return common.SendServerError(c, "Failed to delete pickup location")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Pickup location deleted successfully",
	})
}
