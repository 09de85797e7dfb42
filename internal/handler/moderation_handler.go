package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/middleware"
	"github.com/localore/localore-backend/internal/service"
)

// ModerationHandler serves staff user management and the audit log
type ModerationHandler struct {
	moderationService *service.ModerationService
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(moderationService *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// BanRequest is the payload for a permanent ban
type BanRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// MuteRequest is the payload for a mute. An omitted or non-positive
// DurationHours means indefinite.
type MuteRequest struct {
	Reason        string `json:"reason" binding:"required,max=500"`
	DurationHours int    `json:"duration_hours" binding:"omitempty,max=8760"`
}

// ChangeRoleRequest is the payload for an admin role change
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListUsers godoc
// @Summary      Accounts with moderation state (staff)
// @Tags         moderation
// @Security     BearerAuth
// @Param        keyword  query  string  false  "username or email search"
// @Success      200  {object}  common.APIResponse
// @Router       /moderation/users [get]
func (h *ModerationHandler) ListUsers(c *gin.Context) {
	page, limit := pagination(c)
	users, total, err := h.moderationService.ListUsers(page, limit, c.Query("keyword"))
	if err != nil {
		respondError(c, "moderation.users", err)
		return
	}
	common.SuccessWithMeta(c, users, common.NewMeta(page, limit, total))
}

// Ban godoc
// @Summary      Permanently ban an account (staff)
// @Tags         moderation
// @Security     BearerAuth
// @Param        id       path  int         true  "user id"
// @Param        request  body  BanRequest  true  "ban reason"
// @Success      200  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /moderation/users/{id}/ban [post]
func (h *ModerationHandler) Ban(c *gin.Context) {
	caller := middleware.Caller(c)
	targetID, ok := h.targetID(c)
	if caller == nil || !ok {
		return
	}

	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.moderationService.Ban(caller, targetID, req.Reason, actionContext(c))
	if err != nil {
		respondError(c, "moderation.ban", err)
		return
	}
	common.Success(c, user.ToStaffResponse())
}

// Mute godoc
// @Summary      Mute an account, optionally for a fixed duration (staff)
// @Tags         moderation
// @Security     BearerAuth
// @Param        id       path  int          true  "user id"
// @Param        request  body  MuteRequest  true  "mute reason and duration"
// @Success      200  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /moderation/users/{id}/mute [post]
func (h *ModerationHandler) Mute(c *gin.Context) {
	caller := middleware.Caller(c)
	targetID, ok := h.targetID(c)
	if caller == nil || !ok {
		return
	}

	var req MuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.moderationService.Mute(caller, targetID, req.Reason, req.DurationHours, actionContext(c))
	if err != nil {
		respondError(c, "moderation.mute", err)
		return
	}
	common.Success(c, user.ToStaffResponse())
}

// ChangeRole godoc
// @Summary      Change an account's role (admin)
// @Tags         moderation
// @Security     BearerAuth
// @Param        id       path  int                true  "user id"
// @Param        request  body  ChangeRoleRequest  true  "new role"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Router       /admin/users/{id}/role [put]
func (h *ModerationHandler) ChangeRole(c *gin.Context) {
	caller := middleware.Caller(c)
	targetID, ok := h.targetID(c)
	if caller == nil || !ok {
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.moderationService.ChangeRole(caller, targetID, req.Role, actionContext(c))
	if err != nil {
		respondError(c, "moderation.change_role", err)
		return
	}
	common.Success(c, user.ToStaffResponse())
}

// AuditLogs godoc
// @Summary      The append-only moderation audit trail (staff)
// @Tags         moderation
// @Security     BearerAuth
// @Param        actor_id  query  int     false  "filter by acting staff member"
// @Param        action    query  string  false  "filter by action"
// @Success      200  {object}  common.APIResponse
// @Router       /moderation/audit-logs [get]
func (h *ModerationHandler) AuditLogs(c *gin.Context) {
	page, limit := pagination(c)
	actorID, _ := strconv.ParseUint(c.Query("actor_id"), 10, 64)

	logs, total, err := h.moderationService.AuditLogs(actorID, c.Query("action"), page, limit)
	if err != nil {
		respondError(c, "moderation.audit_logs", err)
		return
	}
	common.SuccessWithMeta(c, logs, common.NewMeta(page, limit, total))
}

func (h *ModerationHandler) targetID(c *gin.Context) (uint64, bool) {
	if middleware.Caller(c) == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return 0, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid user ID.")
		return 0, false
	}
	return id, true
}
