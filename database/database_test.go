package database

import (
	"testing"

	"overtime-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestOpen_SeedsDefaultManagerOnce(t *testing.T) {
	db, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer Close(db)

	var manager models.User
	require.NoError(t, db.Where("username = ?", "admin").First(&manager).Error)
	assert.Equal(t, models.RoleManager, manager.Role)
	assert.True(t, manager.MustChangePassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(manager.PasswordHash), []byte("admin")))

	require.NoError(t, seedDefaultManager(db))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.Error(t, err)
}
