package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "funbudget/internal/errors"
	"funbudget/internal/models"
	"funbudget/internal/pagination"
)

// personService handles budget-owner reference data.
type personService struct {
	db *gorm.DB
}

// NewPersonService creates a new PersonServicer.
func NewPersonService(db *gorm.DB) PersonServicer {
	return &personService{db: db}
}

// CreatePerson creates a person.
func (s *personService) CreatePerson(name, email string) (*models.Person, error) {
	person := &models.Person{Name: name, Email: email}
	if err := s.db.Create(person).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return person, nil
}

// GetPeople returns a paginated list of people ordered by name.
func (s *personService) GetPeople(page pagination.PageRequest) (*pagination.PageResponse[models.Person], error) {
	page.Defaults()

	base := s.db.Model(&models.Person{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var people []models.Person
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&people).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(people, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPersonByID returns a person by ID.
func (s *personService) GetPersonByID(id string) (*models.Person, error) {
	var person models.Person
	if err := s.db.First(&person, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPersonNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &person, nil
}

// UpdatePerson updates a person's name and/or email.
func (s *personService) UpdatePerson(id, name, email string) (*models.Person, error) {
	person, err := s.GetPersonByID(id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if email != "" {
		updates["email"] = email
	}

	if len(updates) > 0 {
		if err := s.db.Model(person).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return person, nil
}

// DeletePerson removes a person.
func (s *personService) DeletePerson(id string) error {
	person, err := s.GetPersonByID(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(person).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
