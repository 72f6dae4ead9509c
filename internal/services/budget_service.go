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

// budgetService handles budget management: CRUD, the enabled flag,
// detail views with balances, and fund transfers between budgets.
type budgetService struct {
	db      *gorm.DB
	periods PeriodServicer
	ledger  LedgerServicer
	rules   RuleServicer
	clock   clock.Clock
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, periods PeriodServicer, ledger LedgerServicer, rules RuleServicer, clk clock.Clock) BudgetServicer {
	return &budgetService{db: db, periods: periods, ledger: ledger, rules: rules, clock: clk}
}

// CreateBudget creates a budget and opens its first period. When an
// initial value is given it is recorded as an INCOME transaction at the
// period start; when an auto-add amount is given a recurring rule with
// the budget's own cadence is created.
func (s *budgetService) CreateBudget(input CreateBudgetInput) (*models.Budget, error) {
	var owner models.Person
	if err := s.db.First(&owner, "id = ?", input.OwnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPersonNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch input.PeriodType {
	case models.PeriodTypeDaily, models.PeriodTypeMonthly, models.PeriodTypeYearly:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidPeriodType, "Unrecognized period type: "+string(input.PeriodType))
	}

	// The overflow limit only means something under the LIMITED policy.
	overflowLimit := input.OverflowLimit
	if input.OverflowPolicy != models.OverflowPolicyLimited {
		overflowLimit = nil
	} else if overflowLimit == nil {
		return nil, apperrors.ErrOverflowLimitMissing
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	budget := &models.Budget{
		Name:           input.Name,
		OwnerID:        input.OwnerID,
		Currency:       input.Currency,
		PeriodType:     input.PeriodType,
		OverflowPolicy: input.OverflowPolicy,
		OverflowLimit:  overflowLimit,
		StartDate:      input.StartDate,
		Enabled:        enabled,
	}
	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	firstPeriod, err := s.periods.GetCurrentOrCreate(budget.ID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if input.InitialValue != nil && input.InitialValue.IsPositive() {
		periodID := firstPeriod.ID
		initial := &models.Transaction{
			BudgetID:    budget.ID,
			PeriodID:    &periodID,
			Amount:      *input.InitialValue,
			Date:        firstPeriod.StartDate,
			Description: "Initial budget value",
			Type:        models.TransactionTypeIncome,
		}
		if err := s.db.Create(initial).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if input.AutoAddAmount != nil && input.AutoAddAmount.IsPositive() {
		if _, err := s.rules.CreateRule(CreateRuleInput{
			BudgetID:     budget.ID,
			Amount:       *input.AutoAddAmount,
			Frequency:    budget.PeriodType,
			ExecutionDay: autoAddExecutionDay(budget.PeriodType, firstPeriod),
			StartDate:    firstPeriod.StartDate,
			Description:  "Auto add in period",
		}); err != nil {
			return nil, err
		}
	}

	return budget, nil
}

// autoAddExecutionDay derives the execution day for an auto-add rule from
// the first period's start, matching the rule evaluator's encoding:
// plain day-of-month for MONTHLY, packed MMDD for YEARLY.
func autoAddExecutionDay(periodType models.PeriodType, firstPeriod *models.BudgetPeriod) int {
	start := firstPeriod.StartDate
	switch periodType {
	case models.PeriodTypeMonthly:
		return start.Day()
	case models.PeriodTypeYearly:
		return int(start.Month())*100 + start.Day()
	default:
		return 1
	}
}

// UpdateBudget updates an existing budget's fields.
func (s *budgetService) UpdateBudget(id string, input UpdateBudgetInput) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := make(map[string]interface{})
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.OwnerID != "" {
		updates["owner_id"] = input.OwnerID
	}
	if input.Currency != "" {
		updates["currency"] = input.Currency
	}
	if input.PeriodType != nil {
		updates["period_type"] = *input.PeriodType
	}
	if input.OverflowPolicy != nil {
		updates["overflow_policy"] = *input.OverflowPolicy
		if *input.OverflowPolicy == models.OverflowPolicyLimited {
			if input.OverflowLimit == nil {
				return nil, apperrors.ErrOverflowLimitMissing
			}
			updates["overflow_limit"] = *input.OverflowLimit
		} else {
			updates["overflow_limit"] = nil
		}
	}
	if input.Enabled != nil {
		updates["enabled"] = *input.Enabled
	}

	if len(updates) > 0 {
		if err := s.db.Model(&budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return &budget, nil
}

// GetBudgetByID returns the budget with owner, open period, and balance.
func (s *budgetService) GetBudgetByID(id string) (*BudgetDetails, error) {
	var budget models.Budget
	if err := s.db.Preload("Owner").First(&budget, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.details(&budget)
}

// details assembles the detail view for one budget.
func (s *budgetService) details(budget *models.Budget) (*BudgetDetails, error) {
	currentPeriod, err := s.periods.GetOpenPeriod(budget.ID)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledger.CurrentBalance(budget.ID)
	if err != nil {
		return nil, err
	}

	return &BudgetDetails{
		Budget:         *budget,
		CurrentPeriod:  currentPeriod,
		CurrentBalance: balance,
	}, nil
}

// GetBudgets returns a paginated list of budgets with details.
func (s *budgetService) GetBudgets(includeDisabled bool, page pagination.PageRequest) (*pagination.PageResponse[BudgetDetails], error) {
	return s.listBudgets(s.db.Model(&models.Budget{}), includeDisabled, page)
}

// GetBudgetsByOwner returns a paginated list of one owner's budgets.
func (s *budgetService) GetBudgetsByOwner(ownerID string, includeDisabled bool, page pagination.PageRequest) (*pagination.PageResponse[BudgetDetails], error) {
	var owner models.Person
	if err := s.db.First(&owner, "id = ?", ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPersonNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.listBudgets(s.db.Model(&models.Budget{}).Where("owner_id = ?", ownerID), includeDisabled, page)
}

func (s *budgetService) listBudgets(base *gorm.DB, includeDisabled bool, page pagination.PageRequest) (*pagination.PageResponse[BudgetDetails], error) {
	page.Defaults()

	if !includeDisabled {
		base = base.Where("enabled = ?", true)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Owner").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	details := make([]BudgetDetails, 0, len(budgets))
	for i := range budgets {
		d, err := s.details(&budgets[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}

	result := pagination.NewPageResponse(details, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SetEnabled toggles the enabled flag. Disabled budgets are skipped by
// rule execution and the rollover scheduler.
func (s *budgetService) SetEnabled(id string, enabled bool) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(&budget).Update("enabled", enabled).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// Transfer moves funds between two budgets as a matched debit/credit
// pair inside a single store transaction: both rows or neither.
func (s *budgetService) Transfer(input TransferInput) error {
	if !input.Amount.IsPositive() {
		return apperrors.ErrNonPositiveAmount
	}
	if input.FromBudgetID == input.ToBudgetID {
		return apperrors.ErrSameBudgetTransfer
	}

	var from, to models.Budget
	if err := s.db.First(&from, "id = ?", input.FromBudgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrBudgetNotFound, "Source budget not found")
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.First(&to, "id = ?", input.ToBudgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrBudgetNotFound, "Target budget not found")
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	date := input.Date
	if date.IsZero() {
		date = s.clock.Now()
	}

	fromPeriodID, err := s.transferPeriodID(from.ID, date)
	if err != nil {
		return err
	}
	toPeriodID, err := s.transferPeriodID(to.ID, date)
	if err != nil {
		return err
	}

	debitDescription := input.Description
	creditDescription := input.Description
	if input.Description == "" {
		debitDescription = "Transfer to " + to.Name
		creditDescription = "Transfer from " + from.Name
	}

	debit := &models.Transaction{
		BudgetID:    from.ID,
		PeriodID:    fromPeriodID,
		Amount:      input.Amount.Neg(),
		Date:        date,
		Description: debitDescription,
		Type:        models.TransactionTypeExpense,
	}
	credit := &models.Transaction{
		BudgetID:    to.ID,
		PeriodID:    toPeriodID,
		Amount:      input.Amount,
		Date:        date,
		Description: creditDescription,
		Type:        models.TransactionTypeIncome,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(debit).Error; err != nil {
			return err
		}
		return tx.Create(credit).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// transferPeriodID resolves the period to tag a transfer leg with; a
// closed current window just means the leg goes in without a period.
func (s *budgetService) transferPeriodID(budgetID string, date time.Time) (*string, error) {
	p, err := s.periods.GetCurrentOrCreate(budgetID, s.clock.Now())
	if err != nil {
		if errors.Is(err, apperrors.ErrPeriodWindowClosed) {
			return nil, nil
		}
		return nil, err
	}
	return resolvePeriodID(nil, p, date), nil
}
