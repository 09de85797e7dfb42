package migration

import (
	"github.com/localore/localore-backend/internal/domain"
	"gorm.io/gorm"
)

// Run migrates the full relational schema
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Story{},
		&domain.StoryRevision{},
		&domain.Tag{},
		&domain.StoryTag{},
		&domain.Comment{},
		&domain.Dispute{},
		&domain.AuditLog{},
	)
}
