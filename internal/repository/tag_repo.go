package repository

import (
	"errors"

	"github.com/localore/localore-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagRepository handles tags and story-tag joins
type TagRepository interface {
	WithTx(tx *gorm.DB) TagRepository
	FindOrCreate(name, slug string) (*domain.Tag, error)
	ReplaceStoryTags(storyID uint64, tagIDs []uint64) error
	NamesForStory(storyID uint64) ([]string, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) WithTx(tx *gorm.DB) TagRepository {
	return &tagRepository{db: tx}
}

func (r *tagRepository) FindOrCreate(name, slug string) (*domain.Tag, error) {
	var tag domain.Tag
	err := r.db.Where("slug = ?", slug).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = domain.Tag{Name: name, Slug: slug}
	if err := r.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// ReplaceStoryTags rewrites the tag set for a story. Runs inside the publish
// transaction so the join rows and the revision land together.
func (r *tagRepository) ReplaceStoryTags(storyID uint64, tagIDs []uint64) error {
	if err := r.db.Where("story_id = ?", storyID).Delete(&domain.StoryTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	joins := make([]domain.StoryTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		joins = append(joins, domain.StoryTag{StoryID: storyID, TagID: id})
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&joins).Error
}

func (r *tagRepository) NamesForStory(storyID uint64) ([]string, error) {
	var names []string
	err := r.db.Table("tags").
		Select("tags.name").
		Joins("JOIN story_tags ON story_tags.tag_id = tags.id").
		Where("story_tags.story_id = ?", storyID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	return names, err
}
