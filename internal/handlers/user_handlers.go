package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bakeshop/internal/common"
	"bakeshop/internal/models"
	"bakeshop/internal/services"
	"bakeshop/internal/validation"
)

// UserHandlers handles staff account administration.
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// ListUsers handles GET /users
func (h *UserHandlers) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	filter := common.SanitizeSearchQuery(c.QueryParam("q"))

	users, err := h.userService.FindAnyMatching(ctx, filter, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list users")
	}
	total, err := h.userService.CountAnyMatching(ctx, filter)
	if err != nil {
		return common.SendServerError(c, "Failed to count users")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"users":       users,
		"total_count": total,
		"limit":       limit,
		"offset":      offset,
	})
}

// GetUser handles GET /users/:id
func (h *UserHandlers) GetUser(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	user, err := h.userService.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return common.SendNotFoundError(c, "User")
		}
		return common.SendServerError(c, "Failed to load user")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": user,
	})
}

// CreateUser handles POST /users
func (h *UserHandlers) CreateUser(c echo.Context) error {
	var req struct {
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=8"`
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Role      string `json:"role" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, validation.FormatValidationError(err))
	}
	if err := common.ValidateRole(req.Role); err != nil {
		return common.SendValidationError(c, "role", err.Error())
	}

	user := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}
	if err := h.userService.Create(c.Request().Context(), user, req.Password); err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			return common.SendConflictError(c, "A user with this email already exists")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    user,
	})
}

// UpdateUser handles PUT /users/:id
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Email     string `json:"email" validate:"required,email"`
		FirstName string `json:"first_name" validate:"required"`
		LastName  string `json:"last_name" validate:"required"`
		Role      string `json:"role" validate:"required"`
		Locked    bool   `json:"locked"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, validation.FormatValidationError(err))
	}
	if err := common.ValidateRole(req.Role); err != nil {
		return common.SendValidationError(c, "role", err.Error())
	}

	user := &models.User{
		ID:        id,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Locked:    req.Locked,
	}
	if err := h.userService.Update(c.Request().Context(), user); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "User")
		case errors.Is(err, services.ErrDuplicateEmail):
			return common.SendConflictError(c, "A user with this email already exists")
		case errors.Is(err, services.ErrUserLocked):
			return common.SendConflictError(c, "User has been locked and cannot be modified or deleted")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user":    user,
	})
}

// UpdatePassword handles PUT /users/:id/password
func (h *UserHandlers) UpdatePassword(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, validation.FormatValidationError(err))
	}

	if err := h.userService.UpdatePassword(c.Request().Context(), id, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "User")
		case errors.Is(err, services.ErrUserLocked):
			return common.SendConflictError(c, "User has been locked and cannot be modified or deleted")
		}
		return common.SendClientError(c, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Password updated successfully",
	})
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	currentUserID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	if err := h.userService.Delete(ctx, id, currentUserID); err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return common.SendNotFoundError(c, "User")
		case errors.Is(err, services.ErrDeleteOwnAccount):
			return common.SendClientError(c, "You cannot delete your own account")
		case errors.Is(err, services.ErrUserLocked):
			return common.SendConflictError(c, "User has been locked and cannot be modified or deleted")
		}
		return common.SendServerError(c, "Failed to delete user")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User deleted successfully",
	})
}
