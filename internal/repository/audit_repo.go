package repository

import (
	"github.com/localore/localore-backend/internal/domain"
	"gorm.io/gorm"
)

// AuditRepository writes and reads the append-only moderation log.
// Deliberately no Update or Delete: entries are immutable.
type AuditRepository interface {
	WithTx(tx *gorm.DB) AuditRepository
	Create(entry *domain.AuditLog) error
	FindAll(actorID uint64, action string, page, limit int) ([]*domain.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) WithTx(tx *gorm.DB) AuditRepository {
	return &auditRepository{db: tx}
}

func (r *auditRepository) Create(entry *domain.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *auditRepository) FindAll(actorID uint64, action string, page, limit int) ([]*domain.AuditLog, int64, error) {
	var logs []*domain.AuditLog
	var total int64

	query := r.db.Model(&domain.AuditLog{})
	if actorID != 0 {
		query = query.Where("actor_id = ?", actorID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, total, err
}
