package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "funbudget/internal/errors"
	"funbudget/internal/models"
	"funbudget/internal/pagination"
)

// payeeService handles payee reference data.
type payeeService struct {
	db *gorm.DB
}

// NewPayeeService creates a new PayeeServicer.
func NewPayeeService(db *gorm.DB) PayeeServicer {
	return &payeeService{db: db}
}

// CreatePayee creates a payee.
func (s *payeeService) CreatePayee(name string) (*models.Payee, error) {
	payee := &models.Payee{Name: name}
	if err := s.db.Create(payee).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payee, nil
}

// GetPayees returns a paginated list of payees ordered by name, optionally
// filtered by a name substring.
func (s *payeeService) GetPayees(search string, page pagination.PageRequest) (*pagination.PageResponse[models.Payee], error) {
	page.Defaults()

	base := s.db.Model(&models.Payee{})
	if search != "" {
		base = base.Where("name LIKE ?", "%"+search+"%")
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payees []models.Payee
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&payees).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payees, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPayeeByID returns a payee by ID.
func (s *payeeService) GetPayeeByID(id string) (*models.Payee, error) {
	var payee models.Payee
	if err := s.db.First(&payee, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPayeeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payee, nil
}

// UpdatePayee renames a payee.
func (s *payeeService) UpdatePayee(id, name string) (*models.Payee, error) {
	payee, err := s.GetPayeeByID(id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		if err := s.db.Model(payee).Update("name", name).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return payee, nil
}

// DeletePayee removes a payee.
func (s *payeeService) DeletePayee(id string) error {
	payee, err := s.GetPayeeByID(id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(payee).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// FindOrCreatePayee returns the payee with the given name, creating it
// if it does not exist yet.
func (s *payeeService) FindOrCreatePayee(name string) (*models.Payee, error) {
	var payee models.Payee
	err := s.db.Where("name = ?", name).First(&payee).Error
	if err == nil {
		return &payee, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.CreatePayee(name)
}
