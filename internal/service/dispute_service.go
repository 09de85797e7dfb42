package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/repository"
	"gorm.io/gorm"
)

// DisputeService implements the report filing and resolution workflow
type DisputeService struct {
	db           *gorm.DB
	disputeRepo  repository.DisputeRepository
	userRepo     repository.UserRepository
	storyRepo    repository.StoryRepository
	revisionRepo repository.RevisionRepository
	commentRepo  repository.CommentRepository
	auditRepo    repository.AuditRepository
}

// NewDisputeService creates a new DisputeService
func NewDisputeService(
	db *gorm.DB,
	disputeRepo repository.DisputeRepository,
	userRepo repository.UserRepository,
	storyRepo repository.StoryRepository,
	revisionRepo repository.RevisionRepository,
	commentRepo repository.CommentRepository,
	auditRepo repository.AuditRepository,
) *DisputeService {
	return &DisputeService{
		db:           db,
		disputeRepo:  disputeRepo,
		userRepo:     userRepo,
		storyRepo:    storyRepo,
		revisionRepo: revisionRepo,
		commentRepo:  commentRepo,
		auditRepo:    auditRepo,
	}
}

// File opens a dispute. One active dispute per (reporter, target) pair.
func (s *DisputeService) File(reporterID uint64, req *domain.FileDisputeRequest) (*domain.Dispute, error) {
	if !domain.ValidTargetType(req.TargetType) {
		return nil, common.ErrInvalidInput
	}
	if !domain.ValidDisputeCategory(req.Category) {
		return nil, common.ErrInvalidCategory
	}

	exists, err := s.disputeRepo.TargetExists(req.TargetType, req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("check target: %w", err)
	}
	if !exists {
		return nil, common.ErrTargetNotFound
	}

	active, err := s.disputeRepo.HasActive(reporterID, req.TargetType, req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("check active disputes: %w", err)
	}
	if active {
		return nil, common.ErrDuplicateDispute
	}

	dispute := &domain.Dispute{
		ReporterID: reporterID,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Category:   req.Category,
		Reason:     req.Reason,
		Status:     domain.DisputeStatusOpen,
	}
	if err := s.disputeRepo.Create(dispute); err != nil {
		return nil, fmt.Errorf("create dispute: %w", err)
	}
	return dispute, nil
}

// Resolve moves a dispute through its state machine. Assignment
// (under_review) stamps resolved_by only; terminal transitions also stamp
// notes and resolved_at. The status change and its audit entry commit
// together.
func (s *DisputeService) Resolve(actor *domain.User, disputeID uint64, req *domain.ResolveDisputeRequest, actx ActionContext) (*domain.Dispute, error) {
	dispute, err := s.disputeRepo.FindByID(disputeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrDisputeNotFound
		}
		return nil, fmt.Errorf("find dispute: %w", err)
	}

	if !dispute.CanTransitionTo(req.Status) {
		return nil, common.ErrInvalidTransition
	}

	dispute.Status = req.Status
	dispute.ResolvedBy = &actor.ID
	action := domain.AuditActionDisputeReview
	if req.Status == domain.DisputeStatusResolved || req.Status == domain.DisputeStatusDismissed {
		now := time.Now()
		dispute.ResolvedAt = &now
		dispute.ResolutionNotes = req.Notes
		action = domain.AuditActionDisputeResolve
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.disputeRepo.WithTx(tx).Update(dispute); err != nil {
			return fmt.Errorf("update dispute: %w", err)
		}
		entry := &domain.AuditLog{
			ActorID:    actor.ID,
			Action:     action,
			TargetType: normalizeTargetType(dispute.TargetType),
			TargetID:   dispute.TargetID,
			TargetName: fmt.Sprintf("dispute #%d", dispute.ID),
			Reason:     fmt.Sprintf("status=%s notes=%s", req.Status, req.Notes),
			ClientIP:   actx.ClientIP,
			RequestID:  actx.RequestID,
		}
		if err := s.auditRepo.WithTx(tx).Create(entry); err != nil {
			return fmt.Errorf("write audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dispute, nil
}

// List pages over disputes for staff review, each row enriched with joined
// target context so reviewers can judge without following links.
func (s *DisputeService) List(status string, page, limit int, sort string) ([]*domain.DisputeResponse, int64, error) {
	page, limit = normalizePage(page, limit)
	if status == "" {
		status = domain.DisputeStatusOpen
	}
	if status == "all" {
		status = ""
	}

	disputes, total, err := s.disputeRepo.FindAll(status, page, limit, sort)
	if err != nil {
		return nil, 0, fmt.Errorf("list disputes: %w", err)
	}

	reporterIDs := make([]uint64, 0, len(disputes))
	for _, d := range disputes {
		reporterIDs = append(reporterIDs, d.ReporterID)
	}
	names, err := s.userRepo.FindNamesByIDs(reporterIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("load reporter names: %w", err)
	}

	out := make([]*domain.DisputeResponse, 0, len(disputes))
	for _, d := range disputes {
		resp := &domain.DisputeResponse{
			ID:              d.ID,
			ReporterID:      d.ReporterID,
			Reporter:        names[d.ReporterID],
			TargetType:      d.TargetType,
			TargetID:        d.TargetID,
			Category:        d.Category,
			Reason:          d.Reason,
			Status:          d.Status,
			ResolvedBy:      d.ResolvedBy,
			ResolutionNotes: d.ResolutionNotes,
			ResolvedAt:      d.ResolvedAt,
			CreatedAt:       d.CreatedAt,
			Context:         s.loadContext(d),
		}
		out = append(out, resp)
	}
	return out, total, nil
}

// loadContext joins target details onto a dispute row. Best-effort: a
// missing target leaves the context empty rather than failing the listing.
func (s *DisputeService) loadContext(d *domain.Dispute) *domain.DisputeContext {
	ctx := &domain.DisputeContext{}
	switch d.TargetType {
	case domain.TargetTypeComment:
		comment, err := s.commentRepo.FindByID(d.TargetID)
		if err != nil {
			return ctx
		}
		ctx.CommentBody = comment.Body
		if names, err := s.userRepo.FindNamesByIDs([]uint64{comment.UserID}); err == nil {
			ctx.Author = names[comment.UserID]
		}
	case domain.TargetTypeStory:
		s.storyContext(ctx, d.TargetID)
	case domain.TargetTypeRevision:
		rev, err := s.revisionRepo.FindByID(d.TargetID)
		if err != nil {
			return ctx
		}
		ctx.StoryTitle = rev.Title
		s.storyContext(ctx, rev.StoryID)
		if names, err := s.userRepo.FindNamesByIDs([]uint64{rev.AuthorID}); err == nil {
			ctx.Author = names[rev.AuthorID]
		}
	case domain.TargetTypeUser:
		if names, err := s.userRepo.FindNamesByIDs([]uint64{d.TargetID}); err == nil {
			ctx.Username = names[d.TargetID]
		}
	}
	return ctx
}

func (s *DisputeService) storyContext(ctx *domain.DisputeContext, storyID uint64) {
	story, err := s.storyRepo.FindByID(storyID)
	if err != nil {
		return
	}
	ctx.StorySlug = story.Slug
	if story.CurrentRevisionID == nil {
		return
	}
	rev, err := s.revisionRepo.FindByID(*story.CurrentRevisionID)
	if err != nil {
		return
	}
	if ctx.StoryTitle == "" {
		ctx.StoryTitle = rev.Title
	}
	if ctx.Author == "" {
		if names, err := s.userRepo.FindNamesByIDs([]uint64{rev.AuthorID}); err == nil {
			ctx.Author = names[rev.AuthorID]
		}
	}
}

// normalizeTargetType folds revision disputes under the story umbrella for
// audit purposes
func normalizeTargetType(t string) string {
	if t == domain.TargetTypeRevision {
		return domain.TargetTypeStory
	}
	return t
}
