package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "funbudget/internal/errors"
	"funbudget/internal/models"
	"funbudget/internal/period"
)

// periodService manages budget period records. It takes no clock: every
// window is anchored at an instant the caller supplies.
type periodService struct {
	db *gorm.DB
}

// NewPeriodService creates a new PeriodServicer.
func NewPeriodService(db *gorm.DB) PeriodServicer {
	return &periodService{db: db}
}

// GetCurrentOrCreate returns the budget's OPEN period, creating one for
// the window containing anchor if none exists. Creation is idempotent at
// the window level: an existing OPEN period for the same window is
// returned as-is, an existing CLOSED one yields ErrPeriodWindowClosed.
func (s *periodService) GetCurrentOrCreate(budgetID string, anchor time.Time) (*models.BudgetPeriod, error) {
	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	open, err := s.GetOpenPeriod(budgetID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return open, nil
	}

	window, err := period.Compute(budget.PeriodType, anchor)
	if err != nil {
		return nil, err
	}

	// Windows are keyed by (budget, start date). Start dates are
	// midnights, so they round-trip through the store exactly; a stored
	// end date may have lost sub-microsecond precision and would not
	// match the computed end.
	var existing models.BudgetPeriod
	err = s.db.Where("budget_id = ? AND start_date = ?",
		budgetID, window.Start).First(&existing).Error
	switch {
	case err == nil:
		if existing.Status == models.PeriodStatusOpen {
			return &existing, nil
		}
		return nil, apperrors.ErrPeriodWindowClosed
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created := &models.BudgetPeriod{
		BudgetID:  budgetID,
		StartDate: window.Start,
		EndDate:   window.End,
		Status:    models.PeriodStatusOpen,
	}
	if err := s.db.Create(created).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return created, nil
}

// GetOpenPeriod returns the budget's OPEN period, or nil when there is none.
func (s *periodService) GetOpenPeriod(budgetID string) (*models.BudgetPeriod, error) {
	var p models.BudgetPeriod
	err := s.db.Where("budget_id = ? AND status = ?", budgetID, models.PeriodStatusOpen).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &p, nil
}

// Close marks the period CLOSED. Closing an already-closed period is a no-op.
func (s *periodService) Close(periodID string) error {
	var p models.BudgetPeriod
	if err := s.db.First(&p, "id = ?", periodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPeriodNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if p.Status == models.PeriodStatusClosed {
		return nil
	}

	if err := s.db.Model(&p).Update("status", models.PeriodStatusClosed).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
