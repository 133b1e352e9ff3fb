package common

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"bakeshop/internal/models"
)

func TestValidateUUID(t *testing.T) {
	id := uuid.New()

	parsed, err := ValidateUUID(id.String(), "order ID")
	assert.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ValidateUUID("", "order ID")
	assert.Error(t, err)

	_, err = ValidateUUID("not-a-uuid", "order ID")
	assert.Error(t, err)
}

func TestValidateDateFormat(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{"valid date", "2026-08-23", false},
		{"empty allowed", "", false},
		{"wrong layout", "23/08/2026", true},
		{"not a date", "soon", true},
		{"too far ahead", "2099-01-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDateFormat(tt.date, "due date")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimeOfDay(t *testing.T) {
	assert.NoError(t, ValidateTimeOfDay("16:00", "due time"))
	assert.NoError(t, ValidateTimeOfDay("", "due time"))
	assert.Error(t, ValidateTimeOfDay("25:00", "due time"))
	assert.Error(t, ValidateTimeOfDay("4pm", "due time"))
}

func TestValidateOrderStatus(t *testing.T) {
	for _, status := range models.OrderStatuses {
		assert.NoError(t, ValidateOrderStatus(status))
	}
	assert.Error(t, ValidateOrderStatus("shipped"))
}

func TestValidateRole(t *testing.T) {
	assert.NoError(t, ValidateRole(models.RoleAdmin))
	assert.NoError(t, ValidateRole(models.RoleBarista))
	assert.Error(t, ValidateRole("manager"))
}

func TestValidatePaginationParams(t *testing.T) {
	limit, offset, err := ValidatePaginationParams(0, -5)
	assert.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, _, err = ValidatePaginationParams(5000, 10)
	assert.NoError(t, err)
	assert.Equal(t, 1000, limit)

	_, _, err = ValidatePaginationParams(10, 2000000)
	assert.Error(t, err)
}

func TestSanitizeSearchQuery(t *testing.T) {
	assert.Equal(t, "cake", SanitizeSearchQuery("  %cake_  "))
	assert.Equal(t, "", SanitizeSearchQuery("%%__"))

	long := SanitizeSearchQuery(strings.Repeat("a", 200))
	assert.Len(t, long, 100)
}

func TestUserIDRoundTrip(t *testing.T) {
	id := uuid.New()
	ctx := context.WithValue(context.Background(), UserIDKey, id)
	ctx = context.WithValue(ctx, RoleKey, models.RoleAdmin)

	gotID, ok := GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, gotID)

	role, ok := GetRoleFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, models.RoleAdmin, role)

	_, ok = GetUserIDFromContext(context.Background())
	assert.False(t, ok)
}
