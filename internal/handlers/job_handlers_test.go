package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"bakeshop/internal/caching"
	"bakeshop/internal/jobs/background"
)

// stubCache overrides only the method under test; the embedded interface
// panics if anything else is touched.
type stubCache struct {
	caching.CacheService
	invalidateErr error
	invalidated   bool
}

func (s *stubCache) InvalidateAllCache(ctx context.Context) error {
	s.invalidated = true
	return s.invalidateErr
}

func TestGetJobStatus(t *testing.T) {
	scheduler := background.NewJobScheduler(nil, nil)
	h := NewJobHandlers(scheduler, &stubCache{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.GetJobStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["total_jobs"])
	assert.Len(t, body["jobs"], 3)
}

func TestInvalidateCache_Success(t *testing.T) {
	cache := &stubCache{}
	h := NewJobHandlers(background.NewJobScheduler(nil, nil), cache)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/cache/invalidate", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.InvalidateCache(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, cache.invalidated)
}

func TestInvalidateCache_Failure(t *testing.T) {
	cache := &stubCache{invalidateErr: errors.New("redis down")}
	h := NewJobHandlers(background.NewJobScheduler(nil, nil), cache)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/cache/invalidate", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.InvalidateCache(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
