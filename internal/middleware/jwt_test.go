package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"bakeshop/internal/common"
	"bakeshop/internal/models"
	"bakeshop/internal/services"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, userID uuid.UUID, role string) string {
	t.Helper()
	claims := services.TokenClaims{
		UserID: userID.String(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	e := echo.New()
	e.POST("/auth/logout", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, JWTMiddleware(testSecret))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, JWTMiddleware(testSecret))

	token := signToken(t, "other-secret", uuid.New(), models.RoleBarista)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_SetsUserContext(t *testing.T) {
	userID := uuid.New()

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		ctx := c.Request().Context()
		gotID, ok := common.GetUserIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, userID, gotID)
		role, ok := common.GetRoleFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, models.RoleBarista, role)
		return c.NoContent(http.StatusOK)
	}, JWTMiddleware(testSecret))

	token := signToken(t, testSecret, userID, models.RoleBarista)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	tests := []struct {
		name     string
		role     string
		wantCode int
	}{
		{"admin passes", models.RoleAdmin, http.StatusOK},
		{"barista forbidden", models.RoleBarista, http.StatusForbidden},
		{"missing role unauthorized", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != "" {
				req = req.WithContext(context.WithValue(req.Context(), common.RoleKey, tt.role))
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler(c)
			if tt.wantCode == http.StatusOK {
				assert.NoError(t, err)
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}
