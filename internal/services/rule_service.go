package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"funbudget/internal/clock"
	apperrors "funbudget/internal/errors"
	"funbudget/internal/models"
	"funbudget/internal/pagination"
)

// ruleService handles recurring rules and their idempotent execution.
type ruleService struct {
	db      *gorm.DB
	periods PeriodServicer
	clock   clock.Clock
}

// NewRuleService creates a new RuleServicer.
func NewRuleService(db *gorm.DB, periods PeriodServicer, clk clock.Clock) RuleServicer {
	return &ruleService{db: db, periods: periods, clock: clk}
}

// ShouldFire reports whether the rule is due on the given date. The date
// must fall within [StartDate, EndDate]; beyond that, DAILY rules are
// always due, MONTHLY rules on their day of month, and YEARLY rules when
// the packed MMDD execution day matches the date's month and day.
func ShouldFire(rule *models.Rule, date time.Time) bool {
	if date.Before(rule.StartDate) {
		return false
	}
	if rule.EndDate != nil && date.After(*rule.EndDate) {
		return false
	}

	switch rule.Frequency {
	case models.PeriodTypeDaily:
		return true
	case models.PeriodTypeMonthly:
		return date.Day() == rule.ExecutionDay
	case models.PeriodTypeYearly:
		return int(date.Month()) == rule.ExecutionDay/100 && date.Day() == rule.ExecutionDay%100
	default:
		return false
	}
}

// CreateRule creates a recurring rule for a budget.
func (s *ruleService) CreateRule(input CreateRuleInput) (*models.Rule, error) {
	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", input.BudgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch input.Frequency {
	case models.PeriodTypeDaily, models.PeriodTypeMonthly, models.PeriodTypeYearly:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidFrequency, "Unrecognized rule frequency: "+string(input.Frequency))
	}

	rule := &models.Rule{
		BudgetID:     input.BudgetID,
		Amount:       input.Amount,
		Frequency:    input.Frequency,
		ExecutionDay: input.ExecutionDay,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Description:  input.Description,
	}
	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetRulesByBudget returns every rule belonging to the budget.
func (s *ruleService) GetRulesByBudget(budgetID string) ([]models.Rule, error) {
	var rules []models.Rule
	if err := s.db.Where("budget_id = ?", budgetID).Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}

// GetAllRules returns a paginated list of rules; unless includeDisabled is
// set, rules of disabled budgets are filtered out.
func (s *ruleService) GetAllRules(includeDisabled bool, page pagination.PageRequest) (*pagination.PageResponse[models.Rule], error) {
	page.Defaults()

	base := s.db.Model(&models.Rule{})
	if !includeDisabled {
		base = base.Joins("JOIN budgets ON budgets.id = rules.budget_id").
			Where("budgets.enabled = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rules []models.Rule
	if err := base.Scopes(pagination.Paginate(page)).Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(rules, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteRule removes a rule. Transactions it produced stay in the ledger.
func (s *ruleService) DeleteRule(id string) error {
	var rule models.Rule
	if err := s.db.First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRuleNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Unscoped().Delete(&rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Execute fires the rule against the current period if it is due now.
func (s *ruleService) Execute(rule *models.Rule) (*RuleExecutionResult, error) {
	now := s.clock.Now()
	return s.execute(rule, now, func() (*models.BudgetPeriod, error) {
		return s.periods.GetCurrentOrCreate(rule.BudgetID, now)
	})
}

// execute is the shared core of Execute and ExecuteForPeriod: guard on the
// budget being enabled and the rule being due at fireAt, resolve a period,
// then create the RECURRING_RULE transaction at most once per period.
func (s *ruleService) execute(rule *models.Rule, fireAt time.Time, resolvePeriod func() (*models.BudgetPeriod, error)) (*RuleExecutionResult, error) {
	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", rule.BudgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !budget.Enabled {
		return nil, nil
	}

	if !ShouldFire(rule, fireAt) {
		return nil, nil
	}

	currentPeriod, err := resolvePeriod()
	if err != nil {
		// An unresolvable period (e.g. the window is already closed)
		// means the rule simply has no effect right now.
		if errors.Is(err, apperrors.ErrPeriodWindowClosed) {
			return nil, nil
		}
		return nil, err
	}
	if currentPeriod == nil {
		return nil, nil
	}

	// Idempotency: at most one RECURRING_RULE transaction per
	// (budget, period, rule). LastExecutedAt is informational only.
	var existing models.Transaction
	err = s.db.Where("budget_id = ? AND period_id = ? AND source_rule_id = ? AND type = ?",
		rule.BudgetID, currentPeriod.ID, rule.ID, models.TransactionTypeRecurringRule).
		First(&existing).Error
	switch {
	case err == nil:
		return nil, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	periodID := currentPeriod.ID
	ruleID := rule.ID
	tx := &models.Transaction{
		BudgetID:     rule.BudgetID,
		PeriodID:     &periodID,
		Amount:       rule.Amount,
		Date:         fireAt,
		Description:  rule.Description,
		Type:         models.TransactionTypeRecurringRule,
		SourceRuleID: &ruleID,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(rule).Update("last_executed_at", fireAt).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &RuleExecutionResult{
		RuleID:        rule.ID,
		PeriodID:      currentPeriod.ID,
		TransactionID: tx.ID,
		Amount:        rule.Amount,
		ExecutedAt:    fireAt,
	}, nil
}

// ExecuteAllForBudget runs every rule of the budget once, collecting the
// firings. Disabled budgets are skipped entirely.
func (s *ruleService) ExecuteAllForBudget(budgetID string) ([]RuleExecutionResult, error) {
	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !budget.Enabled {
		return []RuleExecutionResult{}, nil
	}

	rules, err := s.GetRulesByBudget(budgetID)
	if err != nil {
		return nil, err
	}

	results := make([]RuleExecutionResult, 0, len(rules))
	for i := range rules {
		result, err := s.Execute(&rules[i])
		if err != nil {
			return nil, err
		}
		if result != nil {
			results = append(results, *result)
		}
	}
	return results, nil
}

// ExecuteForPeriod evaluates every rule against the given period's start
// date, so rules due on the period's first day fire as part of rollover
// instead of waiting for the next scheduled pass. Transactions are dated
// at the period start, which keeps retried rollovers deterministic.
func (s *ruleService) ExecuteForPeriod(budgetID, periodID string) ([]RuleExecutionResult, error) {
	var p models.BudgetPeriod
	err := s.db.Where("id = ? AND budget_id = ?", periodID, budgetID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPeriodNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rules, err := s.GetRulesByBudget(budgetID)
	if err != nil {
		return nil, err
	}

	results := make([]RuleExecutionResult, 0, len(rules))
	for i := range rules {
		result, err := s.execute(&rules[i], p.StartDate, func() (*models.BudgetPeriod, error) {
			return &p, nil
		})
		if err != nil {
			return nil, err
		}
		if result != nil {
			results = append(results, *result)
		}
	}
	return results, nil
}
