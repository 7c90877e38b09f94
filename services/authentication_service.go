package services

import (
	"fmt"
	"log"
	"time"

	"github.com/dilip-codes/fingerauthbackend/biometric"
	"github.com/dilip-codes/fingerauthbackend/models"
	"github.com/dilip-codes/fingerauthbackend/repository"
)

// MatchResult is the verdict for one authentication attempt. Score is a count
// of accepted descriptor correspondences, only meaningful relative to the
// configured threshold; a rejected result still carries the closest candidate
// for diagnostics.
type MatchResult struct {
	SubjectID   uint   `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Score       int    `json:"score"`
	Accepted    bool   `json:"accepted"`
}

// AuthenticationService runs the matcher against every gallery entry, applies
// the accept threshold, and records accepted verdicts in the attendance
// ledger.
type AuthenticationService struct {
	gallery            repository.GalleryRepositoryInterface
	attendance         repository.AttendanceRepositoryInterface
	matcher            *biometric.Matcher
	acceptThreshold    int
	minFeatureElements int
}

// NewAuthenticationService creates a new authentication service
func NewAuthenticationService(
	gallery repository.GalleryRepositoryInterface,
	attendance repository.AttendanceRepositoryInterface,
	matcher *biometric.Matcher,
	acceptThreshold int,
	minFeatureElements int,
) *AuthenticationService {
	if minFeatureElements <= 0 {
		minFeatureElements = biometric.DefaultMinFeatureElements
	}
	return &AuthenticationService{
		gallery:            gallery,
		attendance:         attendance,
		matcher:            matcher,
		acceptThreshold:    acceptThreshold,
		minFeatureElements: minFeatureElements,
	}
}

// Decide compares the live capture against every enrolled template and keeps
// the subject with the strictly greatest score; enumeration follows the
// gallery's insertion order, so ties go to the first-seen subject. The result
// is returned even when rejected.
func (s *AuthenticationService) Decide(query biometric.DescriptorSet) (*MatchResult, error) {
	if !query.Usable(s.minFeatureElements) {
		return nil, fmt.Errorf("live capture has %d feature elements: %w", query.ElementCount(), biometric.ErrInsufficientFeatures)
	}

	subjects, err := s.gallery.ListSubjects()
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return nil, biometric.ErrNoEnrolledSubjects
	}

	var best *MatchResult
	for _, subject := range subjects {
		template, err := s.gallery.GetTemplate(subject.ID)
		if err != nil {
			// a subject without a template or an unreadable blob is an
			// invariant violation, not a no-match
			return nil, err
		}
		score := s.matcher.Match(query, template.Primary)
		if best == nil || score > best.Score {
			best = &MatchResult{SubjectID: subject.ID, SubjectName: subject.Name, Score: score}
		}
	}

	best.Accepted = best.Score >= s.acceptThreshold
	return best, nil
}

// Authenticate decides the verdict and, only when accepted, appends an entry
// to today's ledger partition. Rejected verdicts are never recorded.
func (s *AuthenticationService) Authenticate(query biometric.DescriptorSet) (*MatchResult, error) {
	result, err := s.Decide(query)
	if err != nil {
		return nil, err
	}
	if !result.Accepted {
		log.Printf("authentication: rejected, closest candidate %d (%s) scored %d (threshold %d)",
			result.SubjectID, result.SubjectName, result.Score, s.acceptThreshold)
		return result, nil
	}

	now := time.Now()
	entry := &models.AttendanceEntry{
		SubjectID:   result.SubjectID,
		SubjectName: result.SubjectName,
		Date:        now.Format("2006-01-02"),
		Time:        now.Format("15:04:05"),
		Score:       result.Score,
	}
	if err := s.attendance.Record(entry); err != nil {
		return result, fmt.Errorf("verdict accepted but ledger write failed: %w", err)
	}

	log.Printf("authentication: accepted subject %d (%s) with score %d, recorded in %s ledger",
		result.SubjectID, result.SubjectName, result.Score, entry.Date)
	return result, nil
}
