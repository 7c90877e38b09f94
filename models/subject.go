package models

// Subject represents an enrolled person. The id is chosen at enrollment time
// and is the primary key; uniqueness is enforced before any capture work
// begins. It corresponds to the 'subjects' table.
type Subject struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	CreatedAt int64  `gorm:"not null" json:"created_at"` // Unix timestamp, insertion-order key

	Template *TemplateRecord `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (Subject) TableName() string {
	return "subjects"
}
