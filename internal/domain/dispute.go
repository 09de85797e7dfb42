package domain

import "time"

// Dispute statuses. Transitions: open → under_review → {resolved, dismissed},
// or open → {resolved, dismissed} directly.
const (
	DisputeStatusOpen        = "open"
	DisputeStatusUnderReview = "under_review"
	DisputeStatusResolved    = "resolved"
	DisputeStatusDismissed   = "dismissed"
)

// Dispute target types
const (
	TargetTypeStory    = "story"
	TargetTypeRevision = "revision"
	TargetTypeComment  = "comment"
	TargetTypeUser     = "user"
)

// DisputeCategories is the fixed enumeration of report reasons
var DisputeCategories = []string{
	"spam",
	"harassment",
	"misinformation",
	"copyright",
	"inappropriate",
	"vandalism",
	"other",
}

// ValidDisputeCategory reports whether the category is in the fixed enum
func ValidDisputeCategory(category string) bool {
	for _, c := range DisputeCategories {
		if c == category {
			return true
		}
	}
	return false
}

// ValidTargetType reports whether the target type is known
func ValidTargetType(t string) bool {
	switch t {
	case TargetTypeStory, TargetTypeRevision, TargetTypeComment, TargetTypeUser:
		return true
	}
	return false
}

// ActiveDisputeStatuses are the statuses that block a duplicate filing
var ActiveDisputeStatuses = []string{DisputeStatusOpen, DisputeStatusUnderReview}

// Dispute is a report filed by a user against a target
type Dispute struct {
	ID              uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReporterID      uint64     `gorm:"column:reporter_id;index" json:"reporter_id"`
	TargetType      string     `gorm:"column:target_type;type:varchar(20);index:idx_disputes_target" json:"target_type"`
	TargetID        uint64     `gorm:"column:target_id;index:idx_disputes_target" json:"target_id"`
	Category        string     `gorm:"column:category;type:varchar(30)" json:"category"`
	Reason          string     `gorm:"column:reason;type:text" json:"reason"`
	Status          string     `gorm:"column:status;type:varchar(20);default:'open';index" json:"status"`
	ResolvedBy      *uint64    `gorm:"column:resolved_by" json:"resolved_by,omitempty"`
	ResolutionNotes string     `gorm:"column:resolution_notes;type:text" json:"resolution_notes"`
	ResolvedAt      *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Dispute) TableName() string { return "disputes" }

// Active reports whether the dispute still blocks a duplicate filing
func (d *Dispute) Active() bool {
	return d.Status == DisputeStatusOpen || d.Status == DisputeStatusUnderReview
}

// CanTransitionTo validates the dispute state machine
func (d *Dispute) CanTransitionTo(status string) bool {
	switch d.Status {
	case DisputeStatusOpen:
		return status == DisputeStatusUnderReview ||
			status == DisputeStatusResolved ||
			status == DisputeStatusDismissed
	case DisputeStatusUnderReview:
		return status == DisputeStatusResolved || status == DisputeStatusDismissed
	}
	return false
}

// FileDisputeRequest is the payload for filing a dispute
type FileDisputeRequest struct {
	TargetType string `json:"target_type" binding:"required"`
	TargetID   uint64 `json:"target_id" binding:"required"`
	Category   string `json:"category" binding:"required"`
	Reason     string `json:"reason" binding:"required,max=2000"`
}

// ResolveDisputeRequest is the payload for a staff resolution action
type ResolveDisputeRequest struct {
	Status string `json:"status" binding:"required,oneof=under_review resolved dismissed"`
	Notes  string `json:"notes" binding:"max=2000"`
}

// DisputeContext is the joined target context shown on staff listings, so
// reviewers can judge a report without following links
type DisputeContext struct {
	StoryTitle  string `json:"story_title,omitempty"`
	StorySlug   string `json:"story_slug,omitempty"`
	CommentBody string `json:"comment_body,omitempty"`
	Author      string `json:"author,omitempty"`
	Username    string `json:"username,omitempty"`
}

// ToResponse converts a dispute without the staff-only context joins
func (d *Dispute) ToResponse() *DisputeResponse {
	return &DisputeResponse{
		ID:              d.ID,
		ReporterID:      d.ReporterID,
		TargetType:      d.TargetType,
		TargetID:        d.TargetID,
		Category:        d.Category,
		Reason:          d.Reason,
		Status:          d.Status,
		ResolvedBy:      d.ResolvedBy,
		ResolutionNotes: d.ResolutionNotes,
		ResolvedAt:      d.ResolvedAt,
		CreatedAt:       d.CreatedAt,
	}
}

// DisputeResponse is a dispute row enriched for staff review
type DisputeResponse struct {
	ID              uint64          `json:"id"`
	ReporterID      uint64          `json:"reporter_id"`
	Reporter        string          `json:"reporter,omitempty"`
	TargetType      string          `json:"target_type"`
	TargetID        uint64          `json:"target_id"`
	Category        string          `json:"category"`
	Reason          string          `json:"reason"`
	Status          string          `json:"status"`
	ResolvedBy      *uint64         `json:"resolved_by,omitempty"`
	ResolutionNotes string          `json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Context         *DisputeContext `json:"context,omitempty"`
}
