package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dilip-codes/fingerauthbackend/biometric"
	"github.com/dilip-codes/fingerauthbackend/models"
)

// GalleryRepository persists enrolled subjects and their templates. The two
// stores are updated atomically as a pair; a template without its subject (or
// the reverse) can never be observed, even under interruption mid-write.
type GalleryRepository struct {
	DB *gorm.DB
}

// NewGalleryRepository creates a new instance of GalleryRepository
func NewGalleryRepository(db *gorm.DB) *GalleryRepository {
	return &GalleryRepository{DB: db}
}

// Put stores a subject and its template in a single transaction. The template
// row is written first, then the subject record; if either insert fails the
// whole pair is rolled back. An id collision surfaces as ErrDuplicateID and
// leaves the existing enrollment untouched.
func (r *GalleryRepository) Put(subject *models.Subject, template *biometric.Template) error {
	now := time.Now().Unix()
	if subject.CreatedAt == 0 {
		subject.CreatedAt = now
	}

	record := models.TemplateRecord{
		SubjectID: subject.ID,
		CreatedAt: now,
	}
	record.SetTemplate(template)

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Create(subject).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("gallery put for id %d: %w", subject.ID, biometric.ErrDuplicateID)
		}
		return fmt.Errorf("failed to store subject %d with template: %w", subject.ID, err)
	}
	return nil
}

// GetSubject retrieves a subject by id.
func (r *GalleryRepository) GetSubject(id uint) (*models.Subject, error) {
	var subject models.Subject
	err := r.DB.First(&subject, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subject %d: %w", id, biometric.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subject %d: %w", id, err)
	}
	return &subject, nil
}

// GetTemplate retrieves and decodes the stored template for a subject.
func (r *GalleryRepository) GetTemplate(id uint) (*biometric.Template, error) {
	var record models.TemplateRecord
	err := r.DB.Where("subject_id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("template for subject %d: %w", id, biometric.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get template for subject %d: %w", id, err)
	}
	return record.GetTemplate()
}

// ListSubjects retrieves all enrolled subjects in insertion order, so decision
// enumeration (and its first-seen tie-breaking) is reproducible.
func (r *GalleryRepository) ListSubjects() ([]models.Subject, error) {
	var subjects []models.Subject
	err := r.DB.Order("created_at ASC, id ASC").Find(&subjects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

// Exists reports whether a subject id is already enrolled. Enrollment checks
// this before any capture work so duplicate ids fail fast.
func (r *GalleryRepository) Exists(id uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.Subject{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check subject %d: %w", id, err)
	}
	return count > 0, nil
}
