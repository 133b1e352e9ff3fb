package background

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"bakeshop/internal/services"
)

// JobScheduler runs the periodic maintenance tasks of the shop backend.
type JobScheduler struct {
	scheduler    gocron.Scheduler
	orderService services.OrderService
	authService  services.AuthService
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

func NewJobScheduler(orderService services.OrderService, authService services.AuthService) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:    scheduler,
		orderService: orderService,
		authService:  authService,
		jobs:         make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Dashboard warmup - every 5 minutes, matching the dashboard cache TTL
	dashboardJob, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.warmDashboard, context.Background()),
		gocron.WithName("dashboard-warmup"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create dashboard warmup job: %v", err)
	} else {
		js.jobs["dashboard-warmup"] = dashboardJob
	}

	// Overdue order alerts - every 30 minutes
	overdueJob, err := js.scheduler.NewJob(
		gocron.DurationJob(30*time.Minute),
		gocron.NewTask(js.processOverdueOrders),
		gocron.WithName("overdue-order-alerts"),
	)
	if err != nil {
		log.Printf("Failed to create overdue order alerts job: %v", err)
	} else {
		js.jobs["overdue-order-alerts"] = overdueJob
	}

	// Token cleanup - every hour
	tokenJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.cleanupTokens),
		gocron.WithName("token-cleanup"),
	)
	if err != nil {
		log.Printf("Failed to create token cleanup job: %v", err)
	} else {
		js.jobs["token-cleanup"] = tokenJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// warmDashboard keeps the current month's dashboard aggregates hot in cache.
func (js *JobScheduler) warmDashboard(ctx context.Context) error {
	log.Printf("Starting dashboard warmup")

	if err := js.orderService.WarmDashboardCache(ctx); err != nil {
		log.Printf("Failed to warm dashboard cache: %v", err)
		return err
	}

	log.Printf("Completed dashboard warmup")
	return nil
}

// processOverdueOrders flags orders past their due date that never reached
// the ready state.
func (js *JobScheduler) processOverdueOrders() error {
	log.Printf("Starting overdue order scan")

	count, err := js.orderService.CountOverdue(context.Background())
	if err != nil {
		log.Printf("Failed to count overdue orders: %v", err)
		return err
	}
	if count > 0 {
		log.Printf("ALERT: %d orders are past their due date and still unprepared", count)
		// TODO: surface these on the dashboard as a dedicated counter
	}

	log.Printf("Completed overdue order scan")
	return nil
}

// cleanupTokens removes stale auth tokens. Redis TTLs expire entries on
// their own, this is a safety net.
func (js *JobScheduler) cleanupTokens() error {
	log.Printf("Starting token cleanup")

	if err := js.authService.CleanupExpiredTokens(context.Background()); err != nil {
		log.Printf("Failed to clean up tokens: %v", err)
		return err
	}

	log.Printf("Completed token cleanup")
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make(map[string]interface{})
	status["total_jobs"] = len(js.jobs)
	jobs := make([]string, 0, len(js.jobs))

	for name := range js.jobs {
		jobs = append(jobs, name)
	}

	status["jobs"] = jobs

	return status
}
