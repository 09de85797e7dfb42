package domain

import "time"

// Audit actions use a dotted namespace: "<resource>.<verb>"
const (
	AuditActionBan            = "user.ban"
	AuditActionMute           = "user.mute"
	AuditActionRoleChange     = "user.role_change"
	AuditActionStoryRemove    = "story.remove"
	AuditActionDisputeReview  = "dispute.review"
	AuditActionDisputeResolve = "dispute.resolve"
	AuditActionCommentHide    = "comment.hide"
)

// AuditLog is an append-only record of a moderation action. The repository
// exposes no update or delete path; this table is the single source of truth
// for who did what to whom and why.
type AuditLog struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ActorID    uint64    `gorm:"column:actor_id;index" json:"actor_id"`
	Action     string    `gorm:"column:action;type:varchar(50);index" json:"action"`
	TargetType string    `gorm:"column:target_type;type:varchar(20)" json:"target_type"`
	TargetID   uint64    `gorm:"column:target_id" json:"target_id"`
	TargetName string    `gorm:"column:target_name;type:varchar(255)" json:"target_name"`
	Reason     string    `gorm:"column:reason;type:text" json:"reason"`
	ClientIP   string    `gorm:"column:client_ip;type:varchar(45)" json:"client_ip"`
	RequestID  string    `gorm:"column:request_id;type:varchar(36)" json:"request_id"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
