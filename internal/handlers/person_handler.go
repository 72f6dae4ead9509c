package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "funbudget/internal/errors"
	"funbudget/internal/pagination"
	"funbudget/internal/services"
)

// PersonHandler handles person-related requests.
type PersonHandler struct {
	personService services.PersonServicer
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(personService services.PersonServicer) *PersonHandler {
	return &PersonHandler{personService: personService}
}

// CreatePersonRequest represents the request payload for creating a person.
type CreatePersonRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"required,email"`
}

// UpdatePersonRequest represents the request payload for updating a person.
type UpdatePersonRequest struct {
	Name  string `json:"name" binding:"omitempty,min=1,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
}

// CreatePerson handles the creation of a new person.
// @Summary     Create a person
// @Description Create a new budget owner
// @Tags        people
// @Accept      json
// @Produce     json
// @Param       request body CreatePersonRequest true "Person details"
// @Success     201 {object} models.Person "Person created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /people [post]
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	person, err := h.personService.CreatePerson(req.Name, req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"person": person})
}

// GetPeople handles listing people.
// @Summary     Get people
// @Description Get a paginated list of people
// @Tags        people
// @Accept      json
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Person] "Paginated people"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /people [get]
func (h *PersonHandler) GetPeople(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.personService.GetPeople(page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPerson handles fetching a single person.
// @Summary     Get a person
// @Description Get a person by ID
// @Tags        people
// @Accept      json
// @Produce     json
// @Param       id path string true "Person ID"
// @Success     200 {object} models.Person "Person"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /people/{id} [get]
func (h *PersonHandler) GetPerson(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	person, err := h.personService.GetPersonByID(id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"person": person})
}

// UpdatePerson handles updating a person.
// @Summary     Update a person
// @Description Update a person's name and/or email
// @Tags        people
// @Accept      json
// @Produce     json
// @Param       id      path string              true "Person ID"
// @Param       request body UpdatePersonRequest true "Fields to update"
// @Success     200 {object} models.Person "Person updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /people/{id} [put]
func (h *PersonHandler) UpdatePerson(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	person, err := h.personService.UpdatePerson(id, req.Name, req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"person": person})
}

// DeletePerson handles deleting a person.
// @Summary     Delete a person
// @Description Delete a person by ID
// @Tags        people
// @Accept      json
// @Produce     json
// @Param       id path string true "Person ID"
// @Success     204 "Person deleted"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /people/{id} [delete]
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.personService.DeletePerson(id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
