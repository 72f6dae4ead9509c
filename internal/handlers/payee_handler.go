package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "funbudget/internal/errors"
	"funbudget/internal/pagination"
	"funbudget/internal/services"
)

// PayeeHandler handles payee-related requests.
type PayeeHandler struct {
	payeeService services.PayeeServicer
}

// NewPayeeHandler creates a new PayeeHandler.
func NewPayeeHandler(payeeService services.PayeeServicer) *PayeeHandler {
	return &PayeeHandler{payeeService: payeeService}
}

// CreatePayeeRequest represents the request payload for creating a payee.
type CreatePayeeRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdatePayeeRequest represents the request payload for renaming a payee.
type UpdatePayeeRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CreatePayee handles the creation of a new payee.
// @Summary     Create a payee
// @Description Create a new payee
// @Tags        payees
// @Accept      json
// @Produce     json
// @Param       request body CreatePayeeRequest true "Payee details"
// @Success     201 {object} models.Payee "Payee created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees [post]
func (h *PayeeHandler) CreatePayee(c *gin.Context) {
	var req CreatePayeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	payee, err := h.payeeService.CreatePayee(req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payee": payee})
}

// GetPayees handles listing payees.
// @Summary     Get payees
// @Description Get a paginated list of payees, optionally filtered by name
// @Tags        payees
// @Accept      json
// @Produce     json
// @Param       search    query string false "Name substring filter"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Payee] "Paginated payees"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees [get]
func (h *PayeeHandler) GetPayees(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.payeeService.GetPayees(c.Query("search"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayee handles fetching a single payee.
// @Summary     Get a payee
// @Description Get a payee by ID
// @Tags        payees
// @Accept      json
// @Produce     json
// @Param       id path string true "Payee ID"
// @Success     200 {object} models.Payee "Payee"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees/{id} [get]
func (h *PayeeHandler) GetPayee(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	payee, err := h.payeeService.GetPayeeByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payee": payee})
}

// UpdatePayee handles renaming a payee.
// @Summary     Update a payee
// @Description Rename a payee
// @Tags        payees
// @Accept      json
// @Produce     json
// @Param       id      path string             true "Payee ID"
// @Param       request body UpdatePayeeRequest true "New name"
// @Success     200 {object} models.Payee "Payee updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees/{id} [put]
func (h *PayeeHandler) UpdatePayee(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePayeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	payee, err := h.payeeService.UpdatePayee(id, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payee": payee})
}

// DeletePayee handles deleting a payee.
// @Summary     Delete a payee
// @Description Delete a payee by ID
// @Tags        payees
// @Accept      json
// @Produce     json
// @Param       id path string true "Payee ID"
// @Success     204 "Payee deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Payee not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payees/{id} [delete]
func (h *PayeeHandler) DeletePayee(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.payeeService.DeletePayee(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
