package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"bakeshop/internal/caching"
	"bakeshop/internal/common"
	"bakeshop/internal/services"
	"bakeshop/internal/validation"
)

const (
	loginRateLimit  = 10
	loginRateWindow = 15 * time.Minute
)

// AuthHandlers handles login, token refresh and logout.
type AuthHandlers struct {
	userService services.UserService
	authService services.AuthService
	cacheSvc    caching.CacheService
}

func NewAuthHandlers(userService services.UserService, authService services.AuthService,
	cacheSvc caching.CacheService) *AuthHandlers {
	return &AuthHandlers{
		userService: userService,
		authService: authService,
		cacheSvc:    cacheSvc,
	}
}

// Login handles POST /auth/login
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, validation.FormatValidationError(err))
	}

	rateKey := "login:" + strings.ToLower(req.Email)
	limited, err := h.cacheSvc.IsRateLimited(ctx, rateKey, loginRateLimit, loginRateWindow)
	if err != nil {
		log.Printf("WARN: login rate limit check failed: %v", err)
	} else if limited {
		return c.JSON(http.StatusTooManyRequests,
			common.CreateErrorResponse("RATE_LIMITED", "Too many login attempts, try again later", nil))
	}

	user, err := h.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return common.SendUnauthorizedError(c)
		case errors.Is(err, services.ErrUserLocked):
			return c.JSON(http.StatusForbidden,
				common.CreateErrorResponse("ACCOUNT_LOCKED", "This account has been locked", nil))
		}
		return common.SendServerError(c, "Login failed")
	}

	tokens, err := h.authService.GenerateTokens(ctx, user.ID, user.Role)
	if err != nil {
		return common.SendServerError(c, "Failed to issue tokens")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tokens": tokens,
		"user":   user,
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := c.Validate(&req); err != nil {
		return common.SendClientError(c, validation.FormatValidationError(err))
	}

	tokens, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tokens": tokens,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandlers) Logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.RefreshToken != "" {
		if err := h.authService.RevokeRefreshToken(c.Request().Context(), req.RefreshToken); err != nil {
			log.Printf("WARN: failed to revoke refresh token: %v", err)
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Logged out",
	})
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userService.GetByID(ctx, userID)
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
