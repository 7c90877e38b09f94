package models

// AttendanceEntry is one successful authentication recorded in the dated
// ledger. Entries are append-only: multiple authentications of the same
// subject on the same day are all kept as separate rows, each with its own
// timestamp, preserving the full audit trail. It corresponds to the
// 'attendance_entries' table.
type AttendanceEntry struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SubjectID   uint   `gorm:"not null;index" json:"subject_id"`
	SubjectName string `gorm:"not null" json:"subject_name"`
	Date        string `gorm:"not null;index;size:10" json:"date"` // YYYY-MM-DD ledger partition key
	Time        string `gorm:"not null;size:8" json:"time"`        // HH:MM:SS
	Score       int    `gorm:"not null" json:"score"`
	CreatedAt   int64  `gorm:"not null" json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (AttendanceEntry) TableName() string {
	return "attendance_entries"
}
