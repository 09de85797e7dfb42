package service

import (
	"testing"

	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/migration"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) *domain.User {
	t.Helper()

	user := &domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func countAudits(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&domain.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}
