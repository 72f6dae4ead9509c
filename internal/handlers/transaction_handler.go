package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "funbudget/internal/errors"
	"funbudget/internal/models"
	"funbudget/internal/services"
)

// TransactionHandler handles ledger requests scoped to a budget.
type TransactionHandler struct {
	ledgerService services.LedgerServicer
	payeeService  services.PayeeServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerService services.LedgerServicer, payeeService services.PayeeServicer) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService, payeeService: payeeService}
}

// CreateTransactionRequest represents the request payload for appending a
// transaction to a budget's ledger. Installments greater than 1 splits the
// amount into that many monthly transactions. The payee can be given by ID
// or by name; a name that matches no existing payee creates one.
type CreateTransactionRequest struct {
	Amount       decimal.Decimal        `json:"amount" binding:"required"`
	Date         time.Time              `json:"date"`
	Description  string                 `json:"description" binding:"omitempty,max=255"`
	PayeeID      *string                `json:"payee_id" binding:"omitempty,uuid"`
	PayeeName    string                 `json:"payee_name" binding:"omitempty,max=100"`
	Type         models.TransactionType `json:"type" binding:"required,transaction_type"`
	Installments int                    `json:"installments" binding:"omitempty,min=1,max=120"`
}

// CreateTransaction handles appending a transaction to the ledger.
// @Summary     Create a transaction
// @Description Append a transaction to a budget's ledger; installments > 1 splits the amount into monthly parts
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path string                   true "Budget ID"
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	payeeID := req.PayeeID
	if payeeID == nil && req.PayeeName != "" {
		payee, err := h.payeeService.FindOrCreatePayee(req.PayeeName)
		if err != nil {
			respondWithError(c, err)
			return
		}
		payeeID = &payee.ID
	}

	tx, err := h.ledgerService.CreateTransaction(services.CreateTransactionInput{
		BudgetID:     budgetID,
		Amount:       req.Amount,
		Date:         req.Date,
		Description:  req.Description,
		PayeeID:      payeeID,
		Type:         req.Type,
		Installments: req.Installments,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// GetTransactions handles listing a budget's transactions.
// @Summary     Get transactions
// @Description List a budget's transactions, newest first, with optional filters
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id         path  string true  "Budget ID"
// @Param       start_date query string false "Include transactions on or after this RFC 3339 instant"
// @Param       end_date   query string false "Include transactions on or before this RFC 3339 instant"
// @Param       search     query string false "Description substring filter"
// @Param       past_only  query bool   false "Exclude future-dated transactions"
// @Param       limit      query int    false "Maximum rows returned (default 100)"
// @Success     200 {object} []models.Transaction "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var filter services.TransactionFilter

	if v := c.Query("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid start_date"))
			return
		}
		filter.StartDate = &t
	}
	if v := c.Query("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid end_date"))
			return
		}
		filter.EndDate = &t
	}
	filter.Search = c.Query("search")
	filter.PastOnly = c.Query("past_only") == "true"
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid limit"))
			return
		}
		filter.Limit = limit
	}

	transactions, err := h.ledgerService.GetTransactions(budgetID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// DeleteTransaction handles removing a transaction from the ledger.
// @Summary     Delete a transaction
// @Description Permanently remove a transaction from a budget's ledger
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id            path string true "Budget ID"
// @Param       transactionId path string true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/transactions/{transactionId} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "transactionId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.ledgerService.DeleteTransaction(budgetID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
