package repository

import (
	"github.com/localore/localore-backend/internal/domain"
	"gorm.io/gorm"
)

// StoryRepository handles story identity rows
type StoryRepository interface {
	WithTx(tx *gorm.DB) StoryRepository
	FindByID(id uint64) (*domain.Story, error)
	FindBySlug(slug string) (*domain.Story, error)
	Create(story *domain.Story) error
	SetCurrentRevision(storyID, revisionID uint64) error
	SetRemoved(storyID uint64) error
	FindPublished(page, limit int, keyword string) ([]*domain.Story, int64, error)
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new StoryRepository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) WithTx(tx *gorm.DB) StoryRepository {
	return &storyRepository{db: tx}
}

func (r *storyRepository) FindByID(id uint64) (*domain.Story, error) {
	var story domain.Story
	err := r.db.Where("id = ?", id).First(&story).Error
	return &story, err
}

func (r *storyRepository) FindBySlug(slug string) (*domain.Story, error) {
	var story domain.Story
	err := r.db.Where("slug = ?", slug).First(&story).Error
	return &story, err
}

func (r *storyRepository) Create(story *domain.Story) error {
	return r.db.Create(story).Error
}

func (r *storyRepository) SetCurrentRevision(storyID, revisionID uint64) error {
	return r.db.Model(&domain.Story{}).Where("id = ?", storyID).
		Update("current_revision_id", revisionID).Error
}

func (r *storyRepository) SetRemoved(storyID uint64) error {
	return r.db.Model(&domain.Story{}).Where("id = ?", storyID).
		Updates(map[string]interface{}{
			"removed":    true,
			"removed_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

// FindPublished lists stories that have a published revision and are not
// removed. Keyword search is a LIKE over the current revision title and slug.
func (r *storyRepository) FindPublished(page, limit int, keyword string) ([]*domain.Story, int64, error) {
	var stories []*domain.Story
	var total int64

	query := r.db.Model(&domain.Story{}).
		Where("stories.removed = ? AND stories.current_revision_id IS NOT NULL", false)
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.
			Joins("JOIN story_revisions ON story_revisions.id = stories.current_revision_id").
			Where("story_revisions.title LIKE ? OR stories.slug LIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("stories.id DESC").Offset(offset).Limit(limit).Find(&stories).Error; err != nil {
		return nil, 0, err
	}
	return stories, total, nil
}
