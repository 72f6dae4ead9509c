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

// RuleHandler handles recurring rule requests.
type RuleHandler struct {
	ruleService services.RuleServicer
}

// NewRuleHandler creates a new RuleHandler.
func NewRuleHandler(ruleService services.RuleServicer) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

// CreateRuleRequest represents the request payload for creating a rule.
// ExecutionDay is a day of month for MONTHLY rules and a packed MMDD
// integer for YEARLY rules; DAILY rules ignore it.
type CreateRuleRequest struct {
	BudgetID     string            `json:"budget_id" binding:"required,uuid"`
	Amount       decimal.Decimal   `json:"amount" binding:"required"`
	Frequency    models.PeriodType `json:"frequency" binding:"required,period_type"`
	ExecutionDay int               `json:"execution_day" binding:"omitempty,min=1,max=1231"`
	StartDate    time.Time         `json:"start_date" binding:"required"`
	EndDate      *time.Time        `json:"end_date"`
	Description  string            `json:"description" binding:"omitempty,max=255"`
}

// CreateRule handles the creation of a new rule.
// @Summary     Create a rule
// @Description Create a recurring rule that adds its amount to the budget once per matching period
// @Tags        rules
// @Accept      json
// @Produce     json
// @Param       request body CreateRuleRequest true "Rule details"
// @Success     201 {object} models.Rule "Rule created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	rule, err := h.ruleService.CreateRule(services.CreateRuleInput{
		BudgetID:     req.BudgetID,
		Amount:       req.Amount,
		Frequency:    req.Frequency,
		ExecutionDay: req.ExecutionDay,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Description:  req.Description,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rule": rule})
}

// GetRules handles listing rules across budgets.
// @Summary     Get rules
// @Description Get a paginated list of rules, by default only for enabled budgets
// @Tags        rules
// @Accept      json
// @Produce     json
// @Param       include_disabled query bool false "Include rules of disabled budgets"
// @Param       page             query int  false "Page number (default 1)"
// @Param       page_size        query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Rule] "Paginated rules"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rules [get]
func (h *RuleHandler) GetRules(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	includeDisabled := c.Query("include_disabled") == "true"

	result, err := h.ruleService.GetAllRules(includeDisabled, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRulesByBudget handles listing one budget's rules.
// @Summary     Get rules by budget
// @Description Get every rule attached to a budget
// @Tags        rules
// @Accept      json
// @Produce     json
// @Param       budgetId path string true "Budget ID"
// @Success     200 {object} []models.Rule "Rules"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rules/budget/{budgetId} [get]
func (h *RuleHandler) GetRulesByBudget(c *gin.Context) {
	budgetID, err := parsePathID(c, "budgetId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	rules, err := h.ruleService.GetRulesByBudget(budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// DeleteRule handles deleting a rule.
// @Summary     Delete a rule
// @Description Delete a rule by ID; transactions it already produced are kept
// @Tags        rules
// @Accept      json
// @Produce     json
// @Param       id path string true "Rule ID"
// @Success     204 "Rule deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Rule not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rules/{id} [delete]
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ruleService.DeleteRule(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
