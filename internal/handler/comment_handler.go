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

// CommentHandler serves story comment endpoints
type CommentHandler struct {
	commentService *service.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List godoc
// @Summary      Comment threads on a story
// @Tags         comments
// @Param        slug   path   string  true   "story slug"
// @Param        page   query  int     false  "page"
// @Param        limit  query  int     false  "page size"
// @Success      200  {object}  common.APIResponse
// @Router       /stories/{slug}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	comments, total, err := h.commentService.List(c.Param("slug"), page, limit)
	if err != nil {
		respondError(c, "comments.list", err)
		return
	}
	common.SuccessWithMeta(c, comments, common.NewMeta(page, limit, total))
}

// Create godoc
// @Summary      Comment on a story
// @Tags         comments
// @Security     BearerAuth
// @Param        slug     path  string                       true  "story slug"
// @Param        request  body  domain.CreateCommentRequest  true  "comment body"
// @Success      201  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Router       /stories/{slug}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req domain.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	comment, err := h.commentService.Create(caller, c.Param("slug"), &req)
	if err != nil {
		respondError(c, "comments.create", err)
		return
	}
	common.Created(c, comment)
}

// Delete godoc
// @Summary      Remove a comment (author or staff)
// @Tags         comments
// @Security     BearerAuth
// @Param        id  path  int  true  "comment id"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Router       /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	commentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid comment ID.")
		return
	}

	if err := h.commentService.Delete(caller, commentID, actionContext(c)); err != nil {
		respondError(c, "comments.delete", err)
		return
	}
	common.Success(c, gin.H{"message": "Comment removed."})
}
