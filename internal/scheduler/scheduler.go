// Package scheduler implements the periodic rollover trigger: a daily
// pass that finds every open period whose end has passed and rolls the
// owning budget over. Failures are per-budget; one budget failing never
// stops the rest of the batch.
package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"

	"funbudget/internal/clock"
	"funbudget/internal/logger"
	"funbudget/internal/models"
	"funbudget/internal/services"
)

// Scheduler periodically rolls over expired budget periods.
type Scheduler struct {
	db       *gorm.DB
	rollover services.RolloverServicer
	clock    clock.Clock
	interval time.Duration
}

// New creates a Scheduler that checks every interval.
func New(db *gorm.DB, rollover services.RolloverServicer, clk clock.Clock, interval time.Duration) *Scheduler {
	return &Scheduler{db: db, rollover: rollover, clock: clk, interval: interval}
}

// Run executes one pass immediately and then on every tick until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log := logger.Get()
	log.Infow("rollover scheduler started", "interval", s.interval.String())

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("rollover scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single rollover pass and reports how many budgets
// were rolled over and how many failed. Periods whose inclusive end is
// before now are due; disabled budgets are skipped.
func (s *Scheduler) RunOnce(ctx context.Context) (processed, failed int) {
	log := logger.Get()
	now := s.clock.Now()

	var due []models.BudgetPeriod
	err := s.db.WithContext(ctx).
		Preload("Budget").
		Where("status = ? AND end_date < ?", models.PeriodStatusOpen, now).
		Find(&due).Error
	if err != nil {
		log.Errorw("rollover scan failed", "error", err.Error())
		return 0, 0
	}

	if len(due) > 0 {
		log.Infow("found periods to roll over", "count", len(due))
	}

	for _, p := range due {
		if !p.Budget.Enabled {
			continue
		}

		result, err := s.rollover.Rollover(p.BudgetID)
		if err != nil {
			failed++
			log.Errorw("rollover failed",
				"budget_id", p.BudgetID,
				"period_id", p.ID,
				"error", err.Error(),
			)
			continue
		}

		processed++
		log.Infow("budget rolled over",
			"budget_id", p.BudgetID,
			"closed_period_id", result.ClosedPeriodID,
			"new_period_id", result.NewPeriodID,
			"carryover", result.CarryoverAmount.String(),
			"rules_fired", len(result.RuleExecutions),
		)
	}

	return processed, failed
}
