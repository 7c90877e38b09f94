package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dilip-codes/fingerauthbackend/biometric"
	"github.com/dilip-codes/fingerauthbackend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Subject{},
		&models.TemplateRecord{},
		&models.AttendanceEntry{},
		&models.Operator{},
		&models.OperatorSession{},
	))
	return db
}

func testTemplate(t *testing.T) *biometric.Template {
	t.Helper()
	rows := make([][]float32, 8)
	for i := range rows {
		row := make([]float32, 16)
		row[0] = float32(i) * 10
		rows[i] = row
	}
	capture := biometric.DescriptorSet{Kind: biometric.KindFloat, Dim: 16, Float: rows}
	tpl, err := biometric.BuildTemplate([]biometric.DescriptorSet{capture}, 100)
	require.NoError(t, err)
	return tpl
}

func TestGalleryPutAndGetRoundTrip(t *testing.T) {
	repo := NewGalleryRepository(newTestDB(t))
	tpl := testTemplate(t)

	require.NoError(t, repo.Put(&models.Subject{ID: 42, Name: "Asha"}, tpl))

	subject, err := repo.GetSubject(42)
	require.NoError(t, err)
	assert.Equal(t, "Asha", subject.Name)

	stored, err := repo.GetTemplate(42)
	require.NoError(t, err)
	assert.Equal(t, tpl.Strategy, stored.Strategy)
	assert.Equal(t, tpl.Primary.Float, stored.Primary.Float, "descriptors must survive storage bit exact")
	assert.Equal(t, tpl.Centroid.Float, stored.Centroid.Float)

	exists, err := repo.Exists(42)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGalleryPutDuplicateIDRejected(t *testing.T) {
	repo := NewGalleryRepository(newTestDB(t))
	tpl := testTemplate(t)

	require.NoError(t, repo.Put(&models.Subject{ID: 7, Name: "First"}, tpl))

	err := repo.Put(&models.Subject{ID: 7, Name: "Second"}, tpl)
	require.ErrorIs(t, err, biometric.ErrDuplicateID)

	// the original enrollment must be untouched
	subject, err := repo.GetSubject(7)
	require.NoError(t, err)
	assert.Equal(t, "First", subject.Name)

	var templateCount int64
	require.NoError(t, repo.DB.Model(&models.TemplateRecord{}).Count(&templateCount).Error)
	assert.EqualValues(t, 1, templateCount, "a failed put must not leave a stray template row")
}

func TestGalleryPutIsAtomic(t *testing.T) {
	db := newTestDB(t)
	repo := NewGalleryRepository(db)

	// a bare subject row with no template forces the second insert of the
	// transaction to fail after the template insert succeeded
	require.NoError(t, db.Create(&models.Subject{ID: 9, Name: "Bare", CreatedAt: 1}).Error)

	err := repo.Put(&models.Subject{ID: 9, Name: "Clash"}, testTemplate(t))
	require.Error(t, err)

	_, err = repo.GetTemplate(9)
	require.ErrorIs(t, err, biometric.ErrNotFound, "the rolled-back template must not be observable")
}

func TestGalleryGetMissing(t *testing.T) {
	repo := NewGalleryRepository(newTestDB(t))

	_, err := repo.GetSubject(404)
	require.ErrorIs(t, err, biometric.ErrNotFound)

	_, err = repo.GetTemplate(404)
	require.ErrorIs(t, err, biometric.ErrNotFound)

	exists, err := repo.Exists(404)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGalleryGetTemplateCorruptBlob(t *testing.T) {
	repo := NewGalleryRepository(newTestDB(t))
	require.NoError(t, repo.Put(&models.Subject{ID: 3, Name: "Asha"}, testTemplate(t)))

	// truncate the stored blob so it no longer divides into rows
	require.NoError(t, repo.DB.Model(&models.TemplateRecord{}).
		Where("subject_id = ?", 3).
		Update("primary_data", []byte{0x01, 0x02, 0x03}).Error)

	_, err := repo.GetTemplate(3)
	require.ErrorIs(t, err, biometric.ErrStoreCorrupt)
}

func TestGalleryListSubjectsInsertionOrder(t *testing.T) {
	repo := NewGalleryRepository(newTestDB(t))
	tpl := testTemplate(t)

	// ids deliberately out of numeric order; created_at fixes the enrollment order
	require.NoError(t, repo.Put(&models.Subject{ID: 9, Name: "first", CreatedAt: 100}, tpl))
	require.NoError(t, repo.Put(&models.Subject{ID: 2, Name: "second", CreatedAt: 200}, tpl))
	require.NoError(t, repo.Put(&models.Subject{ID: 5, Name: "third", CreatedAt: 300}, tpl))

	subjects, err := repo.ListSubjects()
	require.NoError(t, err)
	require.Len(t, subjects, 3)
	assert.Equal(t, []uint{9, 2, 5}, []uint{subjects[0].ID, subjects[1].ID, subjects[2].ID})
}
