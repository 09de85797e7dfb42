package domain

import (
	"strings"
	"time"
)

// Revision statuses
const (
	RevisionStatusDraft     = "draft"
	RevisionStatusPublished = "published"
)

// ReferencesMarker delimits the embedded references section in a story body
const ReferencesMarker = "## References"

// Story is the stable identity of one article topic. Content lives in
// revisions; the story row only carries the slug and the published pointer.
// Stories are never deleted, only removed (soft-hide) by staff.
type Story struct {
	ID                uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Slug              string     `gorm:"column:slug;type:varchar(100);uniqueIndex" json:"slug"`
	CurrentRevisionID *uint64    `gorm:"column:current_revision_id" json:"current_revision_id,omitempty"`
	Removed           bool       `gorm:"column:removed;default:false" json:"removed"`
	RemovedAt         *time.Time `gorm:"column:removed_at" json:"removed_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Story) TableName() string { return "stories" }

// StoryRevision is an immutable content snapshot. Rows are append-only:
// publishing never mutates or deletes prior revisions.
type StoryRevision struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StoryID       uint64    `gorm:"column:story_id;index" json:"story_id"`
	ParentID      *uint64   `gorm:"column:parent_id" json:"parent_id,omitempty"`
	AuthorID      uint64    `gorm:"column:author_id;index" json:"author_id"`
	Title         string    `gorm:"column:title;type:varchar(255)" json:"title"`
	Subtitle      string    `gorm:"column:subtitle;type:varchar(255)" json:"subtitle"`
	Body          string    `gorm:"column:body;type:mediumtext" json:"body"`
	LeadImage     string    `gorm:"column:lead_image;type:varchar(500)" json:"lead_image"`
	ChangeMessage string    `gorm:"column:change_message;type:varchar(500)" json:"change_message"`
	Status        string    `gorm:"column:status;type:varchar(20);default:'draft'" json:"status"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StoryRevision) TableName() string { return "story_revisions" }

// Tag is a content tag
type Tag struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(50);uniqueIndex" json:"name"`
	Slug      string    `gorm:"column:slug;type:varchar(50);uniqueIndex" json:"slug"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Tag) TableName() string { return "tags" }

// StoryTag links tags to a specific revision's story at publish time
type StoryTag struct {
	StoryID uint64 `gorm:"column:story_id;primaryKey" json:"story_id"`
	TagID   uint64 `gorm:"column:tag_id;primaryKey" json:"tag_id"`
}

func (StoryTag) TableName() string { return "story_tags" }

// PublishRequest is the payload for creating a story or revising one
type PublishRequest struct {
	Slug          string   `json:"slug" binding:"omitempty,slug"`
	Title         string   `json:"title" binding:"required,max=255"`
	Subtitle      string   `json:"subtitle" binding:"max=255"`
	Body          string   `json:"body" binding:"required"`
	Tags          []string `json:"tags" binding:"max=10"`
	LeadImage     string   `json:"lead_image" binding:"omitempty,max=500"`
	ChangeMessage string   `json:"change_message" binding:"max=500"`
	ParentID      *uint64  `json:"parent_id"`
	Status        string   `json:"status" binding:"omitempty,oneof=draft published"`
}

// StoryResponse is a story with its current revision content joined in
type StoryResponse struct {
	ID        uint64             `json:"id"`
	Slug      string             `json:"slug"`
	CreatedAt time.Time          `json:"created_at"`
	Revision  *RevisionResponse  `json:"revision,omitempty"`
	Tags      []string           `json:"tags,omitempty"`
}

// RevisionResponse is a single revision snapshot
type RevisionResponse struct {
	ID            uint64    `json:"id"`
	StoryID       uint64    `json:"story_id"`
	ParentID      *uint64   `json:"parent_id,omitempty"`
	AuthorID      uint64    `json:"author_id"`
	Author        string    `json:"author,omitempty"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle,omitempty"`
	Body          string    `json:"body,omitempty"`
	References    string    `json:"references,omitempty"`
	LeadImage     string    `json:"lead_image,omitempty"`
	ChangeMessage string    `json:"change_message,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse converts a revision, optionally omitting the body (listings)
func (r *StoryRevision) ToResponse(withBody bool) *RevisionResponse {
	resp := &RevisionResponse{
		ID:            r.ID,
		StoryID:       r.StoryID,
		ParentID:      r.ParentID,
		AuthorID:      r.AuthorID,
		Title:         r.Title,
		Subtitle:      r.Subtitle,
		LeadImage:     r.LeadImage,
		ChangeMessage: r.ChangeMessage,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
	}
	if withBody {
		resp.Body, resp.References = SplitReferences(r.Body)
	}
	return resp
}

// SplitReferences separates the main text from the embedded references
// section. Only the first marker splits; later occurrences stay in the
// references text.
func SplitReferences(body string) (string, string) {
	idx := strings.Index(body, ReferencesMarker)
	if idx < 0 {
		return body, ""
	}
	content := strings.TrimRight(body[:idx], "\n ")
	refs := strings.TrimSpace(body[idx+len(ReferencesMarker):])
	return content, refs
}
