package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dilip-codes/fingerauthbackend/models"
)

func TestOperatorCreateAndAuthenticate(t *testing.T) {
	repo := NewOperatorRepository(newTestDB(t))

	operator := &models.Operator{Username: "admin"}
	require.NoError(t, operator.SetPassword("hunter2"))
	require.NoError(t, repo.Create(operator))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	stored, err := repo.GetByUsername("admin")
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("hunter2"))
	assert.False(t, stored.CheckPassword("wrong"))

	_, err = repo.GetByUsername("nobody")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestOperatorSessionRoundTrip(t *testing.T) {
	repo := NewOperatorRepository(newTestDB(t))

	operator := &models.Operator{Username: "admin"}
	require.NoError(t, operator.SetPassword("hunter2"))
	require.NoError(t, repo.Create(operator))

	session := &models.OperatorSession{
		OperatorID: operator.ID,
		Token:      "test-token",
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
	}
	require.NoError(t, repo.CreateSession(session))

	stored, err := repo.GetSessionByToken("test-token")
	require.NoError(t, err)
	require.NotNil(t, stored.Operator, "the session must carry its operator")
	assert.Equal(t, "admin", stored.Operator.Username)

	_, err = repo.GetSessionByToken("unknown-token")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
