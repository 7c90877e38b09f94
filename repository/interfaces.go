package repository

import (
	"github.com/dilip-codes/fingerauthbackend/biometric"
	"github.com/dilip-codes/fingerauthbackend/models"
)

// GalleryRepositoryInterface defines the methods for gallery data operations.
// Put commits the subject record and its template as a pair: either both
// persist or neither does.
type GalleryRepositoryInterface interface {
	Put(subject *models.Subject, template *biometric.Template) error
	GetSubject(id uint) (*models.Subject, error)
	GetTemplate(id uint) (*biometric.Template, error)
	ListSubjects() ([]models.Subject, error)
	Exists(id uint) (bool, error)
}

// AttendanceRepositoryInterface defines the methods for the dated attendance
// ledger. Record appends only; prior rows are never mutated, deduplicated, or
// reordered.
type AttendanceRepositoryInterface interface {
	Record(entry *models.AttendanceEntry) error
	ListByDate(date string) ([]models.AttendanceEntry, error)
	ListDates() ([]string, error)
}

// OperatorRepositoryInterface defines the methods for operator accounts and
// their login sessions.
type OperatorRepositoryInterface interface {
	Create(operator *models.Operator) error
	GetByUsername(username string) (*models.Operator, error)
	Count() (int64, error)
	CreateSession(session *models.OperatorSession) error
	GetSessionByToken(token string) (*models.OperatorSession, error)
}
