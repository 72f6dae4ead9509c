package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "funbudget/internal/errors"
	"funbudget/internal/models"
	"funbudget/internal/pagination"
	"funbudget/internal/services"
)

// BudgetHandler handles budget-related requests, including the rollover
// and rule execution endpoints.
type BudgetHandler struct {
	budgetService   services.BudgetServicer
	rolloverService services.RolloverServicer
	ruleService     services.RuleServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, rolloverService services.RolloverServicer, ruleService services.RuleServicer) *BudgetHandler {
	return &BudgetHandler{
		budgetService:   budgetService,
		rolloverService: rolloverService,
		ruleService:     ruleService,
	}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name           string                `json:"name" binding:"required,min=1,max=100"`
	OwnerID        string                `json:"owner_id" binding:"required,uuid"`
	Currency       string                `json:"currency" binding:"required,iso4217"`
	PeriodType     models.PeriodType     `json:"period_type" binding:"required,period_type"`
	OverflowPolicy models.OverflowPolicy `json:"overflow_policy" binding:"required,overflow_policy"`
	OverflowLimit  *decimal.Decimal      `json:"overflow_limit"`
	StartDate      time.Time             `json:"start_date" binding:"required"`
	Enabled        *bool                 `json:"enabled"`
	InitialValue   *decimal.Decimal      `json:"initial_value"`
	AutoAddAmount  *decimal.Decimal      `json:"auto_add_amount"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Name           string                 `json:"name" binding:"omitempty,min=1,max=100"`
	OwnerID        string                 `json:"owner_id" binding:"omitempty,uuid"`
	Currency       string                 `json:"currency" binding:"omitempty,iso4217"`
	PeriodType     *models.PeriodType     `json:"period_type" binding:"omitempty,period_type"`
	OverflowPolicy *models.OverflowPolicy `json:"overflow_policy" binding:"omitempty,overflow_policy"`
	OverflowLimit  *decimal.Decimal       `json:"overflow_limit"`
	Enabled        *bool                  `json:"enabled"`
}

// SetEnabledRequest represents the request payload for enabling or
// disabling a budget.
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// TransferRequest represents the request payload for transferring funds
// between two budgets.
type TransferRequest struct {
	FromBudgetID string          `json:"from_budget_id" binding:"required,uuid"`
	ToBudgetID   string          `json:"to_budget_id" binding:"required,uuid"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description" binding:"omitempty,max=255"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a new budget with its first period, optionally seeding an initial value and an auto-add rule
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Owner not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.CreateBudget(services.CreateBudgetInput{
		Name:           req.Name,
		OwnerID:        req.OwnerID,
		Currency:       req.Currency,
		PeriodType:     req.PeriodType,
		OverflowPolicy: req.OverflowPolicy,
		OverflowLimit:  req.OverflowLimit,
		StartDate:      req.StartDate,
		Enabled:        req.Enabled,
		InitialValue:   req.InitialValue,
		AutoAddAmount:  req.AutoAddAmount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets.
// @Summary     Get budgets
// @Description Get a paginated list of budgets with their current period and balance
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       include_disabled query bool false "Include disabled budgets"
// @Param       page             query int  false "Page number (default 1)"
// @Param       page_size        query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.BudgetDetails] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	includeDisabled := c.Query("include_disabled") == "true"

	result, err := h.budgetService.GetBudgets(includeDisabled, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetsByOwner handles listing budgets for one owner.
// @Summary     Get budgets by owner
// @Description Get a paginated list of one person's budgets
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id               path  string true  "Owner ID"
// @Param       include_disabled query bool   false "Include disabled budgets"
// @Param       page             query int    false "Page number (default 1)"
// @Param       page_size        query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.BudgetDetails] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/owner/{id} [get]
func (h *BudgetHandler) GetBudgetsByOwner(c *gin.Context) {
	ownerID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	includeDisabled := c.Query("include_disabled") == "true"

	result, err := h.budgetService.GetBudgetsByOwner(ownerID, includeDisabled, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles fetching a single budget with its details.
// @Summary     Get a budget
// @Description Get a budget by ID with its current period and balance
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} services.BudgetDetails "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	details, err := h.budgetService.GetBudgetByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": details})
}

// UpdateBudget handles updating a budget.
// @Summary     Update a budget
// @Description Update a budget's fields; omitted fields are left unchanged
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Fields to update"
// @Success     200 {object} models.Budget "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(id, services.UpdateBudgetInput{
		Name:           req.Name,
		OwnerID:        req.OwnerID,
		Currency:       req.Currency,
		PeriodType:     req.PeriodType,
		OverflowPolicy: req.OverflowPolicy,
		OverflowLimit:  req.OverflowLimit,
		Enabled:        req.Enabled,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// SetEnabled handles enabling or disabling a budget.
// @Summary     Enable or disable a budget
// @Description Set whether a budget participates in scheduling and rule execution
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id      path string            true "Budget ID"
// @Param       request body SetEnabledRequest true "Enabled flag"
// @Success     200 {object} models.Budget "Budget updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/enabled [put]
func (h *BudgetHandler) SetEnabled(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.SetEnabled(id, *req.Enabled)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// Rollover handles closing the current period and opening the next one.
// @Summary     Roll over a budget
// @Description Close the budget's current period, carry over the closing balance per the overflow policy, and open the next period
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} services.RolloverResult "Rollover result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/rollover [post]
func (h *BudgetHandler) Rollover(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.rolloverService.Rollover(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rollover": result})
}

// ExecuteRules handles running all of a budget's rules against the
// current period.
// @Summary     Execute a budget's rules
// @Description Evaluate every recurring rule of the budget against the current period; each rule fires at most once per period
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       id path string true "Budget ID"
// @Success     200 {object} []services.RuleExecutionResult "Executed rules"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/execute-rules [post]
func (h *BudgetHandler) ExecuteRules(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	results, err := h.ruleService.ExecuteAllForBudget(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"executions": results})
}

// Transfer handles moving funds between two budgets.
// @Summary     Transfer between budgets
// @Description Create a matched debit/credit transaction pair between two budgets
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Param       request body TransferRequest true "Transfer details"
// @Success     201 "Transfer recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/transfer [post]
func (h *BudgetHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	err := h.budgetService.Transfer(services.TransferInput{
		FromBudgetID: req.FromBudgetID,
		ToBudgetID:   req.ToBudgetID,
		Amount:       req.Amount,
		Date:         req.Date,
		Description:  req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}
