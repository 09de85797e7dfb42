package domain

import "time"

// Comment statuses. Deletion is always soft: the body stays in storage and
// the terminal status records who removed it.
const (
	CommentStatusVisible       = "visible"
	CommentStatusHiddenByMod   = "hidden_by_mod"
	CommentStatusDeletedByUser = "deleted_by_user"
)

// Comment belongs to a story and the revision that was current when it was
// written. ParentID gives one level of threading.
type Comment struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	StoryID    uint64    `gorm:"column:story_id;index" json:"story_id"`
	RevisionID uint64    `gorm:"column:revision_id" json:"revision_id"`
	UserID     uint64    `gorm:"column:user_id;index" json:"user_id"`
	ParentID   *uint64   `gorm:"column:parent_id" json:"parent_id,omitempty"`
	Body       string    `gorm:"column:body;type:text" json:"body"`
	Status     string    `gorm:"column:status;type:varchar(20);default:'visible'" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Comment) TableName() string { return "comments" }

// CreateCommentRequest is the payload for posting a comment
type CreateCommentRequest struct {
	Body     string  `json:"body" binding:"required,max=4000"`
	ParentID *uint64 `json:"parent_id"`
}

// CommentResponse is a comment as exposed on read paths. Removed comments
// keep their row but the body is blanked here, never in storage.
type CommentResponse struct {
	ID        uint64             `json:"id"`
	StoryID   uint64             `json:"story_id"`
	UserID    uint64             `json:"user_id"`
	Author    string             `json:"author,omitempty"`
	ParentID  *uint64            `json:"parent_id,omitempty"`
	Body      string             `json:"body"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	Replies   []*CommentResponse `json:"replies,omitempty"`
}

// ToResponse converts a comment, hiding the body of removed comments
func (cm *Comment) ToResponse(author string) *CommentResponse {
	resp := &CommentResponse{
		ID:        cm.ID,
		StoryID:   cm.StoryID,
		UserID:    cm.UserID,
		Author:    author,
		ParentID:  cm.ParentID,
		Body:      cm.Body,
		Status:    cm.Status,
		CreatedAt: cm.CreatedAt,
	}
	if cm.Status != CommentStatusVisible {
		resp.Body = ""
	}
	return resp
}
