package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TenantProvider lists the tenants whose reports should be warmed
type TenantProvider interface {
	DistinctTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// WarmHour and WarmMinute give the local time of the daily warm run
	WarmHour   int
	WarmMinute int

	// CheckInterval is how often to check whether the run is due
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		WarmHour:      2,
		WarmMinute:    0,
		CheckInterval: time.Minute,
	}
}

// CronTrigger schedules the daily report warm run for every tenant
type CronTrigger struct {
	config         CronTriggerConfig
	scheduler      *Scheduler
	tenantProvider TenantProvider
	logger         *zap.Logger

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(
	config CronTriggerConfig,
	scheduler *Scheduler,
	tenantProvider TenantProvider,
	logger *zap.Logger,
) *CronTrigger {
	return &CronTrigger{
		config:         config,
		scheduler:      scheduler,
		tenantProvider: tenantProvider,
		logger:         logger,
	}
}

// Start starts the cron trigger loop
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.run(ctx)

	c.logger.Info("Report warm cron started",
		zap.Int("hour", c.config.WarmHour),
		zap.Int("minute", c.config.WarmMinute),
	)
	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop() {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *CronTrigger) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.maybeTrigger(ctx)
		}
	}
}

// maybeTrigger runs the warm pass once per day after the configured time
func (c *CronTrigger) maybeTrigger(ctx context.Context) {
	now := time.Now()
	today := now.Format("2006-01-02")
	if c.lastRunDate == today {
		return
	}
	due := time.Date(now.Year(), now.Month(), now.Day(), c.config.WarmHour, c.config.WarmMinute, 0, 0, now.Location())
	if now.Before(due) {
		return
	}

	tenantIDs, err := c.tenantProvider.DistinctTenantIDs(ctx)
	if err != nil {
		c.logger.Error("Failed to list tenants for warm run", zap.Error(err))
		return
	}

	scheduled := 0
	for _, tenantID := range tenantIDs {
		if err := c.scheduler.ScheduleTenantReports(tenantID, now.UTC()); err != nil {
			c.logger.Warn("Failed to schedule warm jobs",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		scheduled++
	}

	c.lastRunDate = today
	c.logger.Info("Daily report warm run scheduled",
		zap.Int("tenants", scheduled),
	)
}
