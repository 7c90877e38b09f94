package services

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
	"github.com/dilip-codes/fingerauthbackend/repository"
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
	))
	return db
}

// syntheticCapture places row i at offset*500 + i*1000 on the first axis,
// shifted by jitter. Captures sharing an offset match each other decisively;
// rows from a different offset land halfway between candidate rows, so their
// two nearest neighbours are near-equidistant and the ratio test rejects them.
func syntheticCapture(rows, dim int, offset, jitter float32) biometric.DescriptorSet {
	data := make([][]float32, rows)
	for i := range data {
		row := make([]float32, dim)
		row[0] = offset*500 + float32(i)*1000 + jitter
		data[i] = row
	}
	return biometric.DescriptorSet{Kind: biometric.KindFloat, Dim: dim, Float: data}
}

func newTestServices(t *testing.T, acceptThreshold int) (*EnrollmentService, *AuthenticationService, repository.AttendanceRepositoryInterface) {
	t.Helper()
	db := newTestDB(t)
	gallery := repository.NewGalleryRepository(db)
	attendance := repository.NewAttendanceRepository(db)
	matcher := biometric.NewMatcher(biometric.DefaultRatioThreshold)
	enrollment := NewEnrollmentService(gallery, 100, 5)
	auth := NewAuthenticationService(gallery, attendance, matcher, acceptThreshold, 100)
	return enrollment, auth, attendance
}

func TestDecideEmptyGallery(t *testing.T) {
	_, auth, _ := newTestServices(t, 20)

	_, err := auth.Decide(syntheticCapture(20, 16, 0, 0))
	require.ErrorIs(t, err, biometric.ErrNoEnrolledSubjects)
}

func TestDecideInsufficientFeatures(t *testing.T) {
	enrollment, auth, _ := newTestServices(t, 20)
	_, err := enrollment.Enroll(1, "Asha", []biometric.DescriptorSet{syntheticCapture(20, 16, 0, 0)})
	require.NoError(t, err)

	// 2 rows x 16 elements = 32 elements, below the minimum of 100
	_, err = auth.Decide(syntheticCapture(2, 16, 0, 0))
	require.ErrorIs(t, err, biometric.ErrInsufficientFeatures)
}

func TestDecideThresholdBoundary(t *testing.T) {
	// the jittered query matches all 20 stored rows, so the score is exactly 20
	t.Run("score at threshold accepted", func(t *testing.T) {
		enrollment, auth, _ := newTestServices(t, 20)
		_, err := enrollment.Enroll(1, "Asha", []biometric.DescriptorSet{syntheticCapture(20, 16, 0, 0)})
		require.NoError(t, err)

		result, err := auth.Decide(syntheticCapture(20, 16, 0, 0.2))
		require.NoError(t, err)
		assert.Equal(t, 20, result.Score)
		assert.True(t, result.Accepted)
	})

	t.Run("score one below threshold rejected", func(t *testing.T) {
		enrollment, auth, _ := newTestServices(t, 21)
		_, err := enrollment.Enroll(1, "Asha", []biometric.DescriptorSet{syntheticCapture(20, 16, 0, 0)})
		require.NoError(t, err)

		result, err := auth.Decide(syntheticCapture(20, 16, 0, 0.2))
		require.NoError(t, err)
		assert.Equal(t, 20, result.Score)
		assert.False(t, result.Accepted)
		assert.EqualValues(t, 1, result.SubjectID, "a rejected verdict still names the closest candidate")
	})
}

func TestDecidePicksBestSubject(t *testing.T) {
	enrollment, auth, _ := newTestServices(t, 20)

	_, err := enrollment.Enroll(1, "Asha", []biometric.DescriptorSet{syntheticCapture(20, 16, 0, 0)})
	require.NoError(t, err)
	_, err = enrollment.Enroll(2, "Bo", []biometric.DescriptorSet{syntheticCapture(20, 16, 3, 0)})
	require.NoError(t, err)

	result, err := auth.Decide(syntheticCapture(20, 16, 3, 0.2))
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.SubjectID)
	assert.Equal(t, "Bo", result.SubjectName)
	assert.True(t, result.Accepted)
}

func TestAuthenticateRecordsOnlyAcceptedVerdicts(t *testing.T) {
	enrollment, auth, attendance := newTestServices(t, 20)
	_, err := enrollment.Enroll(1, "Asha", []biometric.DescriptorSet{syntheticCapture(20, 16, 0, 0)})
	require.NoError(t, err)

	accepted, err := auth.Authenticate(syntheticCapture(20, 16, 0, 0.2))
	require.NoError(t, err)
	require.True(t, accepted.Accepted)

	rejected, err := auth.Authenticate(syntheticCapture(20, 16, 9, 0))
	require.NoError(t, err, "a rejected verdict is a normal outcome, not an error")
	require.False(t, rejected.Accepted)

	dates, err := attendance.ListDates()
	require.NoError(t, err)
	require.Len(t, dates, 1)

	entries, err := attendance.ListByDate(dates[0])
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the accepted verdict reaches the ledger")
	assert.EqualValues(t, 1, entries[0].SubjectID)
	assert.Equal(t, "Asha", entries[0].SubjectName)
	assert.Equal(t, accepted.Score, entries[0].Score)
}

func TestAuthenticateRepeatEntriesSameDay(t *testing.T) {
	enrollment, auth, attendance := newTestServices(t, 20)
	_, err := enrollment.Enroll(1, "Asha", []biometric.DescriptorSet{syntheticCapture(20, 16, 0, 0)})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		result, err := auth.Authenticate(syntheticCapture(20, 16, 0, 0.2))
		require.NoError(t, err)
		require.True(t, result.Accepted)
	}

	dates, err := attendance.ListDates()
	require.NoError(t, err)
	require.Len(t, dates, 1)
	entries, err := attendance.ListByDate(dates[0])
	require.NoError(t, err)
	assert.Len(t, entries, 3, "each accepted authentication appends its own row")
}
