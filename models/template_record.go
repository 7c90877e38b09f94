package models

import (
	"fmt"

	"github.com/dilip-codes/fingerauthbackend/biometric"
)

// TemplateRecord persists a subject's enrollment template: the primary
// descriptor set verbatim plus the aggregated centroid, both as BLOBs with an
// exact numeric round-trip. It corresponds to the 'template_records' table.
type TemplateRecord struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SubjectID    uint   `gorm:"uniqueIndex;not null" json:"subject_id"`
	Strategy     string `gorm:"not null" json:"strategy"` // detector that produced the descriptors
	Kind         string `gorm:"not null" json:"kind"`
	Dim          int    `gorm:"not null" json:"dim"`
	PrimaryData  []byte `gorm:"not null;column:primary_data" json:"-"`
	CentroidData []byte `gorm:"column:centroid_data" json:"-"`
	CreatedAt    int64  `gorm:"not null" json:"created_at"`

	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (TemplateRecord) TableName() string {
	return "template_records"
}

// SetTemplate encodes a built template into the record's BLOB columns.
func (tr *TemplateRecord) SetTemplate(t *biometric.Template) {
	tr.Strategy = string(t.Strategy)
	tr.Kind = string(t.Primary.Kind)
	tr.Dim = t.Primary.Dim
	tr.PrimaryData = t.Primary.EncodeRows()
	if !t.Centroid.Empty() {
		tr.CentroidData = t.Centroid.EncodeRows()
	}
}

// GetTemplate decodes the stored BLOBs back into a template. Malformed data
// surfaces as biometric.ErrStoreCorrupt; it is never silently dropped.
func (tr *TemplateRecord) GetTemplate() (*biometric.Template, error) {
	primary, err := biometric.DecodeDescriptorSet(biometric.DescriptorKind(tr.Kind), tr.Dim, tr.PrimaryData)
	if err != nil {
		return nil, fmt.Errorf("template record for subject %d: %w", tr.SubjectID, err)
	}

	t := &biometric.Template{
		Strategy: biometric.DetectorStrategy(tr.Strategy),
		Primary:  primary,
	}
	if len(tr.CentroidData) > 0 {
		// centroids are always stored as float rows, even for binary primaries
		centroid, err := biometric.DecodeDescriptorSet(biometric.KindFloat, tr.Dim, tr.CentroidData)
		if err != nil {
			return nil, fmt.Errorf("template record centroid for subject %d: %w", tr.SubjectID, err)
		}
		t.Centroid = centroid
	} else {
		t.Centroid = biometric.DescriptorSet{Kind: biometric.KindFloat, Dim: tr.Dim}
	}
	return t, nil
}
