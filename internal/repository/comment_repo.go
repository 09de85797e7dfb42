package repository

import (
	"github.com/localore/localore-backend/internal/domain"
	"gorm.io/gorm"
)

// CommentRepository handles comment data access
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	FindByID(id uint64) (*domain.Comment, error)
	FindByStory(storyID uint64, page, limit int) ([]*domain.Comment, int64, error)
	Create(comment *domain.Comment) error
	SetStatus(id uint64, status string) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx}
}

func (r *commentRepository) FindByID(id uint64) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.Where("id = ?", id).First(&comment).Error
	return &comment, err
}

// FindByStory pages over root comments and loads all replies for the page.
// Removed comments stay in the result so threads keep their shape; read
// paths blank the bodies.
func (r *commentRepository) FindByStory(storyID uint64, page, limit int) ([]*domain.Comment, int64, error) {
	var roots []*domain.Comment
	var total int64

	query := r.db.Model(&domain.Comment{}).
		Where("story_id = ? AND parent_id IS NULL", storyID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&roots).Error; err != nil {
		return nil, 0, err
	}
	if len(roots) == 0 {
		return roots, total, nil
	}

	rootIDs := make([]uint64, 0, len(roots))
	for _, c := range roots {
		rootIDs = append(rootIDs, c.ID)
	}
	var replies []*domain.Comment
	if err := r.db.Where("story_id = ? AND parent_id IN ?", storyID, rootIDs).
		Order("id ASC").Find(&replies).Error; err != nil {
		return nil, 0, err
	}
	return append(roots, replies...), total, nil
}

func (r *commentRepository) Create(comment *domain.Comment) error {
	return r.db.Create(comment).Error
}

// SetStatus soft-deletes a comment. The body column is never touched.
func (r *commentRepository) SetStatus(id uint64, status string) error {
	return r.db.Model(&domain.Comment{}).Where("id = ?", id).
		Update("status", status).Error
}
