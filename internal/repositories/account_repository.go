package repositories

import (
	"github.com/buzztalks/backend/internal/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for credential/account operations
type AccountRepository interface {
	CreateAccount(account *models.Account) error
	GetAccountByEmail(email string) (*models.Account, error)
	GetAccountByFirebaseUID(firebaseUID string) (*models.Account, error)
}

// PostgresAccountRepository implements AccountRepository for PostgreSQL
type PostgresAccountRepository struct {
	db *gorm.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository
func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) CreateAccount(account *models.Account) error {
	return r.db.Create(account).Error
}

func (r *PostgresAccountRepository) GetAccountByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *PostgresAccountRepository) GetAccountByFirebaseUID(firebaseUID string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("firebase_uid = ?", firebaseUID).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}
