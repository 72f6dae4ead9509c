package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "funbudget/internal/errors"
	"funbudget/internal/models"
	"funbudget/internal/pagination"
)

// accountService handles account reference data.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates an account.
func (s *accountService) CreateAccount(name string, accountType models.AccountType, financialInstitution string, active bool) (*models.Account, error) {
	switch accountType {
	case models.AccountTypeBank, models.AccountTypeCreditCard:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unrecognized account type: "+string(accountType))
	}

	account := &models.Account{
		Name:                 name,
		Type:                 accountType,
		FinancialInstitution: financialInstitution,
		Active:               active,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetAccounts returns a paginated list of accounts ordered by name.
func (s *accountService) GetAccounts(page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID returns an account by ID.
func (s *accountService) GetAccountByID(id string) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}
