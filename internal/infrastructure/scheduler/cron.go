package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Cron runs the staleness sweep on a schedule in the configured timezone.
type Cron struct {
	runner *cron.Cron
	logger *slog.Logger
}

// New builds a scheduler in the given timezone.
func New(timezone string, logger *slog.Logger) (*Cron, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", timezone, err)
	}
	return &Cron{
		runner: cron.New(cron.WithLocation(loc)),
		logger: logger,
	}, nil
}

// Schedule registers a job under a standard 5-field cron expression.
func (c *Cron) Schedule(expr string, job func()) error {
	if _, err := c.runner.AddFunc(expr, job); err != nil {
		return fmt.Errorf("schedule %q: %w", expr, err)
	}
	return nil
}

// Start begins dispatching in a background goroutine.
func (c *Cron) Start() {
	if c.logger != nil {
		c.logger.Info("scheduler started")
	}
	c.runner.Start()
}

// Stop waits for a running job to finish.
func (c *Cron) Stop() {
	ctx := c.runner.Stop()
	<-ctx.Done()
	if c.logger != nil {
		c.logger.Info("scheduler stopped")
	}
}
