package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/middleware"
	"github.com/localore/localore-backend/internal/service"
)

// DisputeHandler serves the dispute filing and review endpoints
type DisputeHandler struct {
	disputeService *service.DisputeService
}

// NewDisputeHandler creates a new DisputeHandler
func NewDisputeHandler(disputeService *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

// File godoc
// @Summary      File a dispute against content or a user
// @Tags         disputes
// @Security     BearerAuth
// @Param        request body domain.FileDisputeRequest true "dispute details"
// @Success      201  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /disputes [post]
func (h *DisputeHandler) File(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req domain.FileDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	dispute, err := h.disputeService.File(caller.ID, &req)
	if err != nil {
		respondError(c, "disputes.file", err)
		return
	}
	common.Created(c, dispute.ToResponse())
}

// List godoc
// @Summary      Dispute queue for staff review
// @Tags         disputes
// @Security     BearerAuth
// @Param        status  query  string  false  "open, under_review, resolved, dismissed or all"
// @Param        sort    query  string  false  "created_at or resolved_at"
// @Success      200  {object}  common.APIResponse
// @Router       /disputes [get]
func (h *DisputeHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	disputes, total, err := h.disputeService.List(c.Query("status"), page, limit, c.Query("sort"))
	if err != nil {
		respondError(c, "disputes.list", err)
		return
	}
	common.SuccessWithMeta(c, disputes, common.NewMeta(page, limit, total))
}

// Resolve godoc
// @Summary      Move a dispute through its review states
// @Tags         disputes
// @Security     BearerAuth
// @Param        id       path  int                           true  "dispute id"
// @Param        request  body  domain.ResolveDisputeRequest  true  "new status and notes"
// @Success      200  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /disputes/{id}/resolve [put]
func (h *DisputeHandler) Resolve(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	disputeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid dispute ID.")
		return
	}

	var req domain.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	dispute, err := h.disputeService.Resolve(caller, disputeID, &req, actionContext(c))
	if err != nil {
		respondError(c, "disputes.resolve", err)
		return
	}
	common.Success(c, dispute.ToResponse())
}
