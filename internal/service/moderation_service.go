package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/repository"
	"gorm.io/gorm"
)

const minReasonLength = 3

// ActionContext carries request metadata into audit entries
type ActionContext struct {
	ClientIP  string
	RequestID string
}

// ModerationService implements the staff-facing user actions. Every state
// mutation commits in the same transaction as its audit entry, so a partial
// failure cannot leave an unlogged action.
type ModerationService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
}

// NewModerationService creates a new ModerationService
func NewModerationService(db *gorm.DB, userRepo repository.UserRepository, auditRepo repository.AuditRepository) *ModerationService {
	return &ModerationService{db: db, userRepo: userRepo, auditRepo: auditRepo}
}

// Ban sets the banned flag on a user. One-way: there is no unban action.
func (s *ModerationService) Ban(actor *domain.User, targetID uint64, reason string, actx ActionContext) (*domain.User, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < minReasonLength {
		return nil, common.ErrReasonTooShort
	}
	if actor.ID == targetID {
		return nil, common.ErrSelfTarget
	}

	target, err := s.findTarget(targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleAdmin {
		return nil, common.ErrTargetIsAdmin
	}
	if target.IsBanned {
		return nil, common.ErrAlreadyBanned
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).SetBanned(target.ID); err != nil {
			return fmt.Errorf("set banned: %w", err)
		}
		return s.audit(tx, actor, domain.AuditActionBan, target, reason, actx)
	})
	if err != nil {
		return nil, err
	}

	target.IsBanned = true
	return target, nil
}

// Mute silences a user until an absolute expiry, or indefinitely when no
// positive duration is given. Banned targets must be unbanned first.
func (s *ModerationService) Mute(actor *domain.User, targetID uint64, reason string, durationHours int, actx ActionContext) (*domain.User, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < minReasonLength {
		return nil, common.ErrReasonTooShort
	}
	if actor.ID == targetID {
		return nil, common.ErrSelfTarget
	}

	target, err := s.findTarget(targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleAdmin {
		return nil, common.ErrTargetIsAdmin
	}
	if target.IsBanned {
		return nil, common.ErrBannedFirst
	}

	var until *time.Time
	auditReason := reason + " (duration: indefinite)"
	if durationHours > 0 {
		t := time.Now().Add(time.Duration(durationHours) * time.Hour)
		until = &t
		auditReason = fmt.Sprintf("%s (duration: %dh)", reason, durationHours)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).SetMuted(target.ID, until); err != nil {
			return fmt.Errorf("set muted: %w", err)
		}
		return s.audit(tx, actor, domain.AuditActionMute, target, auditReason, actx)
	})
	if err != nil {
		return nil, err
	}

	target.IsMuted = true
	target.MutedUntil = until
	return target, nil
}

// ChangeRole sets a user's role. Admin-only at the route layer; promoting to
// admin is deliberately excluded from this path.
func (s *ModerationService) ChangeRole(actor *domain.User, targetID uint64, role string, actx ActionContext) (*domain.User, error) {
	if role != domain.RoleContributor && role != domain.RoleModerator {
		return nil, common.ErrInvalidRole
	}
	if actor.ID == targetID {
		return nil, common.ErrSelfTarget
	}

	target, err := s.findTarget(targetID)
	if err != nil {
		return nil, err
	}
	if target.Role == domain.RoleAdmin {
		return nil, common.ErrTargetIsAdmin
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).SetRole(target.ID, role); err != nil {
			return fmt.Errorf("set role: %w", err)
		}
		reason := fmt.Sprintf("role changed from %s to %s", target.Role, role)
		return s.audit(tx, actor, domain.AuditActionRoleChange, target, reason, actx)
	})
	if err != nil {
		return nil, err
	}

	target.Role = role
	return target, nil
}

// ListUsers pages over accounts for the staff dashboard
func (s *ModerationService) ListUsers(page, limit int, keyword string) ([]domain.StaffUserResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	users, total, err := s.userRepo.FindAll(page, limit, keyword)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	out := make([]domain.StaffUserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToStaffResponse())
	}
	return out, total, nil
}

// AuditLogs pages over the append-only moderation log
func (s *ModerationService) AuditLogs(actorID uint64, action string, page, limit int) ([]*domain.AuditLog, int64, error) {
	page, limit = normalizePage(page, limit)
	return s.auditRepo.FindAll(actorID, action, page, limit)
}

func (s *ModerationService) findTarget(id uint64) (*domain.User, error) {
	target, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("find target: %w", err)
	}
	return target, nil
}

func (s *ModerationService) audit(tx *gorm.DB, actor *domain.User, action string, target *domain.User, reason string, actx ActionContext) error {
	entry := &domain.AuditLog{
		ActorID:    actor.ID,
		Action:     action,
		TargetType: domain.TargetTypeUser,
		TargetID:   target.ID,
		TargetName: target.Username,
		Reason:     reason,
		ClientIP:   actx.ClientIP,
		RequestID:  actx.RequestID,
	}
	if err := s.auditRepo.WithTx(tx).Create(entry); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}
