package repository

import (
	"github.com/localore/localore-backend/internal/domain"
	"gorm.io/gorm"
)

// RevisionRepository handles append-only revision snapshots. There is no
// update or delete: history must stay reconstructable.
type RevisionRepository interface {
	WithTx(tx *gorm.DB) RevisionRepository
	Create(rev *domain.StoryRevision) error
	FindByID(id uint64) (*domain.StoryRevision, error)
	FindByStoryAndID(storyID, id uint64) (*domain.StoryRevision, error)
	HistoryForStory(storyID uint64, page, limit int) ([]*domain.StoryRevision, int64, error)
	DraftsForAuthor(authorID uint64, storyID *uint64) ([]*domain.StoryRevision, error)
	DraftsForNewStories(authorID uint64) ([]*domain.StoryRevision, error)
}

type revisionRepository struct {
	db *gorm.DB
}

// NewRevisionRepository creates a new RevisionRepository
func NewRevisionRepository(db *gorm.DB) RevisionRepository {
	return &revisionRepository{db: db}
}

func (r *revisionRepository) WithTx(tx *gorm.DB) RevisionRepository {
	return &revisionRepository{db: tx}
}

func (r *revisionRepository) Create(rev *domain.StoryRevision) error {
	return r.db.Create(rev).Error
}

func (r *revisionRepository) FindByID(id uint64) (*domain.StoryRevision, error) {
	var rev domain.StoryRevision
	err := r.db.Where("id = ?", id).First(&rev).Error
	return &rev, err
}

func (r *revisionRepository) FindByStoryAndID(storyID, id uint64) (*domain.StoryRevision, error) {
	var rev domain.StoryRevision
	err := r.db.Where("story_id = ? AND id = ?", storyID, id).First(&rev).Error
	return &rev, err
}

// HistoryForStory lists published revisions newest first. The id tiebreak
// keeps ordering stable when two publishes share a timestamp.
func (r *revisionRepository) HistoryForStory(storyID uint64, page, limit int) ([]*domain.StoryRevision, int64, error) {
	var revs []*domain.StoryRevision
	var total int64

	query := r.db.Model(&domain.StoryRevision{}).
		Where("story_id = ? AND status = ?", storyID, domain.RevisionStatusPublished)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&revs).Error; err != nil {
		return nil, 0, err
	}
	return revs, total, nil
}

// DraftsForAuthor lists an author's drafts, optionally scoped to one story
func (r *revisionRepository) DraftsForAuthor(authorID uint64, storyID *uint64) ([]*domain.StoryRevision, error) {
	var revs []*domain.StoryRevision
	query := r.db.Where("author_id = ? AND status = ?", authorID, domain.RevisionStatusDraft)
	if storyID != nil {
		query = query.Where("story_id = ?", *storyID)
	}
	err := query.Order("created_at DESC, id DESC").Find(&revs).Error
	return revs, err
}

// DraftsForNewStories lists the author's drafts belonging to stories that
// have no published revision yet (wholly-new, unpublished stories)
func (r *revisionRepository) DraftsForNewStories(authorID uint64) ([]*domain.StoryRevision, error) {
	var revs []*domain.StoryRevision
	err := r.db.
		Joins("JOIN stories ON stories.id = story_revisions.story_id").
		Where("story_revisions.author_id = ? AND story_revisions.status = ?",
			authorID, domain.RevisionStatusDraft).
		Where("stories.current_revision_id IS NULL").
		Order("story_revisions.created_at DESC, story_revisions.id DESC").
		Find(&revs).Error
	return revs, err
}
