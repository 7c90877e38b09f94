package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dilip-codes/fingerauthbackend/models"
)

// OperatorRepository handles database operations for operator accounts and
// their login sessions.
type OperatorRepository struct {
	DB *gorm.DB
}

// NewOperatorRepository creates a new instance of OperatorRepository
func NewOperatorRepository(db *gorm.DB) *OperatorRepository {
	return &OperatorRepository{DB: db}
}

// Create creates a new operator record in the database
func (r *OperatorRepository) Create(operator *models.Operator) error {
	now := time.Now().Unix()
	if operator.CreatedAt == 0 {
		operator.CreatedAt = now
	}
	operator.UpdatedAt = now

	if err := r.DB.Create(operator).Error; err != nil {
		return fmt.Errorf("failed to create operator %s: %w", operator.Username, err)
	}
	return nil
}

// GetByUsername retrieves an operator by username
func (r *OperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	var operator models.Operator
	err := r.DB.Where("username = ?", username).First(&operator).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get operator %s: %w", username, err)
	}
	return &operator, nil
}

// Count returns the number of operator accounts
func (r *OperatorRepository) Count() (int64, error) {
	var count int64
	if err := r.DB.Model(&models.Operator{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count operators: %w", err)
	}
	return count, nil
}

// CreateSession stores a newly issued login session
func (r *OperatorRepository) CreateSession(session *models.OperatorSession) error {
	if session.CreatedAt == 0 {
		session.CreatedAt = time.Now().Unix()
	}
	if err := r.DB.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session for operator %d: %w", session.OperatorID, err)
	}
	return nil
}

// GetSessionByToken retrieves a session with its operator preloaded
func (r *OperatorRepository) GetSessionByToken(token string) (*models.OperatorSession, error) {
	var session models.OperatorSession
	err := r.DB.Preload("Operator").Where("token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}
