package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/repository"
	"github.com/localore/localore-backend/pkg/sanitize"
	"gorm.io/gorm"
)

// StoryService manages story identities and their revision history
type StoryService struct {
	db           *gorm.DB
	storyRepo    repository.StoryRepository
	revisionRepo repository.RevisionRepository
	tagRepo      repository.TagRepository
	userRepo     repository.UserRepository
	auditRepo    repository.AuditRepository
}

// NewStoryService creates a new StoryService
func NewStoryService(
	db *gorm.DB,
	storyRepo repository.StoryRepository,
	revisionRepo repository.RevisionRepository,
	tagRepo repository.TagRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
) *StoryService {
	return &StoryService{
		db:           db,
		storyRepo:    storyRepo,
		revisionRepo: revisionRepo,
		tagRepo:      tagRepo,
		userRepo:     userRepo,
		auditRepo:    auditRepo,
	}
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify normalizes a title into a URL slug
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// Create registers a new story with its first revision. The story row, the
// revision, the published pointer and the tag joins land in one transaction.
func (s *StoryService) Create(authorID uint64, req *domain.PublishRequest) (*domain.StoryResponse, error) {
	slug := req.Slug
	if slug == "" {
		slug = Slugify(req.Title)
	}
	if slug == "" {
		return nil, common.ErrInvalidInput
	}

	if _, err := s.storyRepo.FindBySlug(slug); err == nil {
		return nil, common.ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check slug: %w", err)
	}

	status := req.Status
	if status == "" {
		status = domain.RevisionStatusPublished
	}

	var story *domain.Story
	var rev *domain.StoryRevision
	err := s.db.Transaction(func(tx *gorm.DB) error {
		story = &domain.Story{Slug: slug}
		if err := s.storyRepo.WithTx(tx).Create(story); err != nil {
			return fmt.Errorf("create story: %w", err)
		}

		var txErr error
		rev, txErr = s.insertRevision(tx, story, authorID, req, status, nil)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return s.toStoryResponse(story, rev)
}

// Revise appends a new revision to an existing story. Prior revisions are
// never mutated; publishing moves the story's current pointer.
func (s *StoryService) Revise(authorID uint64, slug string, req *domain.PublishRequest) (*domain.StoryResponse, error) {
	story, err := s.findStory(slug)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.RevisionStatusPublished
	}

	if req.ParentID != nil {
		if _, err := s.revisionRepo.FindByStoryAndID(story.ID, *req.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, common.ErrRevisionNotFound
			}
			return nil, fmt.Errorf("find parent revision: %w", err)
		}
	}

	parentID := req.ParentID
	if parentID == nil {
		parentID = story.CurrentRevisionID
	}

	var rev *domain.StoryRevision
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		rev, txErr = s.insertRevision(tx, story, authorID, req, status, parentID)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	if status == domain.RevisionStatusPublished {
		story.CurrentRevisionID = &rev.ID
	}
	return s.toStoryResponse(story, rev)
}

// insertRevision writes the revision row and, for published revisions, the
// current pointer and tag joins. Must run inside a transaction.
func (s *StoryService) insertRevision(tx *gorm.DB, story *domain.Story, authorID uint64, req *domain.PublishRequest, status string, parentID *uint64) (*domain.StoryRevision, error) {
	rev := &domain.StoryRevision{
		StoryID:       story.ID,
		ParentID:      parentID,
		AuthorID:      authorID,
		Title:         strings.TrimSpace(req.Title),
		Subtitle:      strings.TrimSpace(req.Subtitle),
		Body:          sanitize.Body(req.Body),
		LeadImage:     req.LeadImage,
		ChangeMessage: strings.TrimSpace(req.ChangeMessage),
		Status:        status,
	}
	if err := s.revisionRepo.WithTx(tx).Create(rev); err != nil {
		return nil, fmt.Errorf("create revision: %w", err)
	}

	if status != domain.RevisionStatusPublished {
		return rev, nil
	}

	if err := s.storyRepo.WithTx(tx).SetCurrentRevision(story.ID, rev.ID); err != nil {
		return nil, fmt.Errorf("set current revision: %w", err)
	}

	tagRepo := s.tagRepo.WithTx(tx)
	tagIDs := make([]uint64, 0, len(req.Tags))
	for _, name := range req.Tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tag, err := tagRepo.FindOrCreate(name, Slugify(name))
		if err != nil {
			return nil, fmt.Errorf("find or create tag %q: %w", name, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := tagRepo.ReplaceStoryTags(story.ID, tagIDs); err != nil {
		return nil, fmt.Errorf("replace story tags: %w", err)
	}
	return rev, nil
}

// Get returns a story with its current published revision. Stories without a
// published revision, and removed stories, read as not found.
func (s *StoryService) Get(slug string) (*domain.StoryResponse, error) {
	story, err := s.findStory(slug)
	if err != nil {
		return nil, err
	}
	if story.CurrentRevisionID == nil {
		return nil, common.ErrStoryNotFound
	}

	rev, err := s.revisionRepo.FindByID(*story.CurrentRevisionID)
	if err != nil {
		return nil, fmt.Errorf("find current revision: %w", err)
	}
	return s.toStoryResponse(story, rev)
}

// List returns published stories, newest first, with optional keyword search
func (s *StoryService) List(page, limit int, keyword string) ([]*domain.StoryResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	stories, total, err := s.storyRepo.FindPublished(page, limit, keyword)
	if err != nil {
		return nil, 0, fmt.Errorf("list stories: %w", err)
	}

	out := make([]*domain.StoryResponse, 0, len(stories))
	for _, story := range stories {
		rev, err := s.revisionRepo.FindByID(*story.CurrentRevisionID)
		if err != nil {
			return nil, 0, fmt.Errorf("find revision for story %d: %w", story.ID, err)
		}
		resp, err := s.toListResponse(story, rev)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, resp)
	}
	return out, total, nil
}

// History lists a story's published revisions, newest first
func (s *StoryService) History(slug string, page, limit int) ([]*domain.RevisionResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	story, err := s.findStory(slug)
	if err != nil {
		return nil, 0, err
	}

	revs, total, err := s.revisionRepo.HistoryForStory(story.ID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("load history: %w", err)
	}

	authorIDs := make([]uint64, 0, len(revs))
	for _, r := range revs {
		authorIDs = append(authorIDs, r.AuthorID)
	}
	names, err := s.userRepo.FindNamesByIDs(authorIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("load author names: %w", err)
	}

	out := make([]*domain.RevisionResponse, 0, len(revs))
	for _, r := range revs {
		resp := r.ToResponse(false)
		resp.Author = names[r.AuthorID]
		out = append(out, resp)
	}
	return out, total, nil
}

// RevisionAt fetches a specific historical snapshot. Drafts are
// author-private: anyone else reads them as not found.
func (s *StoryService) RevisionAt(slug string, revisionID, callerID uint64) (*domain.RevisionResponse, error) {
	story, err := s.findStory(slug)
	if err != nil {
		return nil, err
	}

	rev, err := s.revisionRepo.FindByStoryAndID(story.ID, revisionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrRevisionNotFound
		}
		return nil, fmt.Errorf("find revision: %w", err)
	}
	if rev.Status == domain.RevisionStatusDraft && rev.AuthorID != callerID {
		return nil, common.ErrRevisionNotFound
	}
	return rev.ToResponse(true), nil
}

// Drafts lists the caller's draft revisions. With a slug, drafts for that
// story; without one, drafts for stories that have no published revision yet.
func (s *StoryService) Drafts(authorID uint64, slug string) ([]*domain.RevisionResponse, error) {
	var revs []*domain.StoryRevision
	var err error

	if slug != "" {
		var story *domain.Story
		story, err = s.findStory(slug)
		if err != nil {
			return nil, err
		}
		revs, err = s.revisionRepo.DraftsForAuthor(authorID, &story.ID)
	} else {
		revs, err = s.revisionRepo.DraftsForNewStories(authorID)
	}
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}

	out := make([]*domain.RevisionResponse, 0, len(revs))
	for _, r := range revs {
		out = append(out, r.ToResponse(true))
	}
	return out, nil
}

// Remove soft-hides a story (staff action). The story row and all revisions
// stay in storage; the removal and its audit entry commit together.
func (s *StoryService) Remove(actorID uint64, slug, reason string, actx ActionContext) error {
	story, err := s.findStory(slug)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.storyRepo.WithTx(tx).SetRemoved(story.ID); err != nil {
			return fmt.Errorf("remove story: %w", err)
		}
		entry := &domain.AuditLog{
			ActorID:    actorID,
			Action:     domain.AuditActionStoryRemove,
			TargetType: domain.TargetTypeStory,
			TargetID:   story.ID,
			TargetName: story.Slug,
			Reason:     reason,
			ClientIP:   actx.ClientIP,
			RequestID:  actx.RequestID,
		}
		if err := s.auditRepo.WithTx(tx).Create(entry); err != nil {
			return fmt.Errorf("write audit entry: %w", err)
		}
		return nil
	})
}

func (s *StoryService) findStory(slug string) (*domain.Story, error) {
	story, err := s.storyRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrStoryNotFound
		}
		return nil, fmt.Errorf("find story: %w", err)
	}
	if story.Removed {
		return nil, common.ErrStoryNotFound
	}
	return story, nil
}

func (s *StoryService) toStoryResponse(story *domain.Story, rev *domain.StoryRevision) (*domain.StoryResponse, error) {
	resp, err := s.toListResponse(story, rev)
	if err != nil {
		return nil, err
	}
	resp.Revision = rev.ToResponse(true)
	if names, err := s.userRepo.FindNamesByIDs([]uint64{rev.AuthorID}); err == nil {
		resp.Revision.Author = names[rev.AuthorID]
	}
	return resp, nil
}

func (s *StoryService) toListResponse(story *domain.Story, rev *domain.StoryRevision) (*domain.StoryResponse, error) {
	tags, err := s.tagRepo.NamesForStory(story.ID)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	resp := &domain.StoryResponse{
		ID:        story.ID,
		Slug:      story.Slug,
		CreatedAt: story.CreatedAt,
		Tags:      tags,
		Revision:  rev.ToResponse(false),
	}
	return resp, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
