package handlers

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"bakeshop/internal/caching"
	"bakeshop/internal/common"
	"bakeshop/internal/jobs/background"
)

// JobHandlers exposes scheduler status and cache maintenance to admins.
type JobHandlers struct {
	scheduler *background.JobScheduler
	cacheSvc  caching.CacheService
}

func NewJobHandlers(scheduler *background.JobScheduler, cacheSvc caching.CacheService) *JobHandlers {
	return &JobHandlers{
		scheduler: scheduler,
		cacheSvc:  cacheSvc,
	}
}

// GetJobStatus handles GET /jobs
func (h *JobHandlers) GetJobStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.GetJobStatus())
}

// InvalidateCache handles POST /cache/invalidate
func (h *JobHandlers) InvalidateCache(c echo.Context) error {
	if err := h.cacheSvc.InvalidateAllCache(c.Request().Context()); err != nil {
		log.Printf("Failed to invalidate cache: %v", err)
		return common.SendServerError(c, "Failed to invalidate cache")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Cache invalidated",
	})
}
