package services

import (
	"fmt"
	"testing"

	"referral-service/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB spins up an isolated in-memory database with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database alive and
	// serializes writers, which sqlite requires anyway
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Referral{},
		&models.ReferralPoints{},
	))
	return db
}

func mustRegister(t *testing.T, svc *RegistrationService, username, email, code string) *models.User {
	t.Helper()
	user, err := svc.Register(RegisterInput{
		Username:     username,
		Email:        email,
		Password:     "s3cret-pass",
		ReferralCode: code,
	})
	require.NoError(t, err)
	return user
}

func profileOf(t *testing.T, db *gorm.DB, userID string) *models.Profile {
	t.Helper()
	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	return &profile
}
