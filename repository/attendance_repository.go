package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dilip-codes/fingerauthbackend/models"
)

// AttendanceRepository appends verdicts to the per-day attendance ledger. The
// ledger is append-only: rows are never mutated, deduplicated, or reordered.
type AttendanceRepository struct {
	DB *gorm.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository
func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

// Record appends an entry to its date partition. Repeated authentications of
// the same subject on the same day each get their own row.
func (r *AttendanceRepository) Record(entry *models.AttendanceEntry) error {
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().Unix()
	}
	if err := r.DB.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record attendance for subject %d on %s: %w", entry.SubjectID, entry.Date, err)
	}
	return nil
}

// ListByDate retrieves one date partition in arrival order.
func (r *AttendanceRepository) ListByDate(date string) ([]models.AttendanceEntry, error) {
	var entries []models.AttendanceEntry
	err := r.DB.Where("date = ?", date).Order("id ASC").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", date, err)
	}
	return entries, nil
}

// ListDates retrieves the distinct ledger partition keys that hold entries.
func (r *AttendanceRepository) ListDates() ([]string, error) {
	var dates []string
	err := r.DB.Model(&models.AttendanceEntry{}).Distinct("date").Order("date ASC").Pluck("date", &dates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance dates: %w", err)
	}
	return dates, nil
}
