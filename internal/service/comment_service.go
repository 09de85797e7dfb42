package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/repository"
	"github.com/localore/localore-backend/pkg/sanitize"
	"gorm.io/gorm"
)

// CommentService handles threaded comments and their soft deletion
type CommentService struct {
	db          *gorm.DB
	commentRepo repository.CommentRepository
	storyRepo   repository.StoryRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(
	db *gorm.DB,
	commentRepo repository.CommentRepository,
	storyRepo repository.StoryRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
) *CommentService {
	return &CommentService{
		db:          db,
		commentRepo: commentRepo,
		storyRepo:   storyRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
	}
}

// Create posts a comment against a story's current published revision.
// Banned and actively muted callers are rejected here, not just in the UI.
func (s *CommentService) Create(caller *domain.User, slug string, req *domain.CreateCommentRequest) (*domain.CommentResponse, error) {
	if caller.IsBanned {
		return nil, common.ErrAccountSuspended
	}
	if caller.MutedNow(time.Now()) {
		return nil, common.ErrAccountMuted
	}

	story, err := s.storyRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrStoryNotFound
		}
		return nil, fmt.Errorf("find story: %w", err)
	}
	if story.Removed || story.CurrentRevisionID == nil {
		return nil, common.ErrStoryNotFound
	}

	body := sanitize.Comment(req.Body)
	if body == "" {
		return nil, common.ErrInvalidInput
	}

	// One level of threading: a reply to a reply attaches to the root
	parentID := req.ParentID
	if parentID != nil {
		parent, err := s.commentRepo.FindByID(*parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, common.ErrCommentNotFound
			}
			return nil, fmt.Errorf("find parent comment: %w", err)
		}
		if parent.StoryID != story.ID {
			return nil, common.ErrCommentNotFound
		}
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	comment := &domain.Comment{
		StoryID:    story.ID,
		RevisionID: *story.CurrentRevisionID,
		UserID:     caller.ID,
		ParentID:   parentID,
		Body:       body,
		Status:     domain.CommentStatusVisible,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment.ToResponse(caller.Username), nil
}

// List returns a story's comment threads: paginated roots with their replies
func (s *CommentService) List(slug string, page, limit int) ([]*domain.CommentResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	story, err := s.storyRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, common.ErrStoryNotFound
		}
		return nil, 0, fmt.Errorf("find story: %w", err)
	}
	if story.Removed {
		return nil, 0, common.ErrStoryNotFound
	}

	comments, total, err := s.commentRepo.FindByStory(story.ID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	userIDs := make([]uint64, 0, len(comments))
	for _, cm := range comments {
		userIDs = append(userIDs, cm.UserID)
	}
	names, err := s.userRepo.FindNamesByIDs(userIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("load comment authors: %w", err)
	}

	byID := make(map[uint64]*domain.CommentResponse, len(comments))
	var roots []*domain.CommentResponse
	for _, cm := range comments {
		resp := cm.ToResponse(names[cm.UserID])
		byID[cm.ID] = resp
		if cm.ParentID == nil {
			roots = append(roots, resp)
		}
	}
	for _, cm := range comments {
		if cm.ParentID == nil {
			continue
		}
		if parent, ok := byID[*cm.ParentID]; ok {
			parent.Replies = append(parent.Replies, byID[cm.ID])
		}
	}
	return roots, total, nil
}

// Delete soft-deletes a comment. The terminal status records who removed it:
// the author's own deletion and a staff hide stay distinguishable. Staff
// hides are audited; self-deletes are not moderation actions.
func (s *CommentService) Delete(caller *domain.User, commentID uint64, actx ActionContext) error {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrCommentNotFound
		}
		return fmt.Errorf("find comment: %w", err)
	}

	if comment.UserID == caller.ID {
		return s.commentRepo.SetStatus(comment.ID, domain.CommentStatusDeletedByUser)
	}

	if !domain.IsStaff(caller.Role) {
		return common.ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.commentRepo.WithTx(tx).SetStatus(comment.ID, domain.CommentStatusHiddenByMod); err != nil {
			return fmt.Errorf("hide comment: %w", err)
		}
		entry := &domain.AuditLog{
			ActorID:    caller.ID,
			Action:     domain.AuditActionCommentHide,
			TargetType: domain.TargetTypeComment,
			TargetID:   comment.ID,
			TargetName: fmt.Sprintf("comment #%d", comment.ID),
			Reason:     "hidden by staff",
			ClientIP:   actx.ClientIP,
			RequestID:  actx.RequestID,
		}
		if err := s.auditRepo.WithTx(tx).Create(entry); err != nil {
			return fmt.Errorf("write audit entry: %w", err)
		}
		return nil
	})
}
