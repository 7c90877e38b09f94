package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/dilip-codes/fingerauthbackend/biometric"
	"github.com/dilip-codes/fingerauthbackend/models"
	"github.com/dilip-codes/fingerauthbackend/repository"
)

// EnrollmentService turns a batch of enrollment captures into a stored
// subject/template pair. It owns the duplicate-id fast path and the usability
// rules; acquisition and feature extraction happen upstream.
type EnrollmentService struct {
	gallery            repository.GalleryRepositoryInterface
	minFeatureElements int
	maxCaptures        int
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(gallery repository.GalleryRepositoryInterface, minFeatureElements, maxCaptures int) *EnrollmentService {
	if minFeatureElements <= 0 {
		minFeatureElements = biometric.DefaultMinFeatureElements
	}
	if maxCaptures <= 0 {
		maxCaptures = 5
	}
	return &EnrollmentService{
		gallery:            gallery,
		minFeatureElements: minFeatureElements,
		maxCaptures:        maxCaptures,
	}
}

// CheckAvailable verifies the id is free before any capture work is performed,
// so duplicate enrollments fail before the operator collects fingerprints.
func (s *EnrollmentService) CheckAvailable(id uint) error {
	exists, err := s.gallery.Exists(id)
	if err != nil {
		return fmt.Errorf("enrollment id check: %w", err)
	}
	if exists {
		return fmt.Errorf("enrollment id %d: %w", id, biometric.ErrDuplicateID)
	}
	return nil
}

// Enroll builds a template from the captured descriptor sets and commits the
// subject and template as an atomic pair. Re-enrollment under an existing id
// is rejected, never overwritten, so prior attendance history keeps its
// meaning.
func (s *EnrollmentService) Enroll(id uint, name string, captures []biometric.DescriptorSet) (*models.Subject, error) {
	if id == 0 {
		return nil, fmt.Errorf("enrollment requires a positive subject id")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("enrollment requires a subject name")
	}

	if err := s.CheckAvailable(id); err != nil {
		return nil, err
	}

	if len(captures) > s.maxCaptures {
		log.Printf("enrollment: %d captures supplied for id %d, keeping the first %d", len(captures), id, s.maxCaptures)
		captures = captures[:s.maxCaptures]
	}

	template, err := biometric.BuildTemplate(captures, s.minFeatureElements)
	if err != nil {
		return nil, err
	}

	subject := &models.Subject{ID: id, Name: name}
	if err := s.gallery.Put(subject, template); err != nil {
		return nil, err
	}

	log.Printf("enrollment: registered subject %d (%s) with %d primary descriptor(s), strategy %s",
		id, name, template.Primary.Len(), template.Strategy)
	return subject, nil
}
