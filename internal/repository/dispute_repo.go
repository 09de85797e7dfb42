package repository

import (
	"github.com/localore/localore-backend/internal/domain"
	"gorm.io/gorm"
)

// DisputeRepository handles dispute data access
type DisputeRepository interface {
	WithTx(tx *gorm.DB) DisputeRepository
	FindByID(id uint64) (*domain.Dispute, error)
	Create(dispute *domain.Dispute) error
	Update(dispute *domain.Dispute) error
	HasActive(reporterID uint64, targetType string, targetID uint64) (bool, error)
	FindAll(status string, page, limit int, sort string) ([]*domain.Dispute, int64, error)
	TargetExists(targetType string, targetID uint64) (bool, error)
}

type disputeRepository struct {
	db *gorm.DB
}

// NewDisputeRepository creates a new DisputeRepository
func NewDisputeRepository(db *gorm.DB) DisputeRepository {
	return &disputeRepository{db: db}
}

func (r *disputeRepository) WithTx(tx *gorm.DB) DisputeRepository {
	return &disputeRepository{db: tx}
}

func (r *disputeRepository) FindByID(id uint64) (*domain.Dispute, error) {
	var dispute domain.Dispute
	err := r.db.Where("id = ?", id).First(&dispute).Error
	return &dispute, err
}

func (r *disputeRepository) Create(dispute *domain.Dispute) error {
	return r.db.Create(dispute).Error
}

func (r *disputeRepository) Update(dispute *domain.Dispute) error {
	return r.db.Save(dispute).Error
}

// HasActive checks the one-active-dispute-per-target rule before insert
func (r *disputeRepository) HasActive(reporterID uint64, targetType string, targetID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Dispute{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ? AND status IN ?",
			reporterID, targetType, targetID, domain.ActiveDisputeStatuses).
		Count(&count).Error
	return count > 0, err
}

func (r *disputeRepository) FindAll(status string, page, limit int, sort string) ([]*domain.Dispute, int64, error) {
	var disputes []*domain.Dispute
	var total int64

	query := r.db.Model(&domain.Dispute{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC, id DESC"
	if sort == "resolved_at" {
		order = "resolved_at DESC, id DESC"
	}
	offset := (page - 1) * limit
	if err := query.Order(order).Offset(offset).Limit(limit).Find(&disputes).Error; err != nil {
		return nil, 0, err
	}
	return disputes, total, nil
}

// targetTables maps a dispute target type to its backing table
var targetTables = map[string]string{
	domain.TargetTypeStory:    "stories",
	domain.TargetTypeRevision: "story_revisions",
	domain.TargetTypeComment:  "comments",
	domain.TargetTypeUser:     "users",
}

// TargetExists validates the target row against the appropriate table
func (r *disputeRepository) TargetExists(targetType string, targetID uint64) (bool, error) {
	table, ok := targetTables[targetType]
	if !ok {
		return false, nil
	}
	var count int64
	err := r.db.Table(table).Where("id = ?", targetID).Count(&count).Error
	return count > 0, err
}
