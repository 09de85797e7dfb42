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

// StoryHandler serves the story and revision endpoints
type StoryHandler struct {
	storyService *service.StoryService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(storyService *service.StoryService) *StoryHandler {
	return &StoryHandler{storyService: storyService}
}

// RemoveStoryRequest is the staff removal payload
type RemoveStoryRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// List godoc
// @Summary      Published stories, newest first
// @Tags         stories
// @Param        page     query  int     false  "page"
// @Param        limit    query  int     false  "page size"
// @Param        keyword  query  string  false  "title or slug search"
// @Success      200  {object}  common.APIResponse
// @Router       /stories [get]
func (h *StoryHandler) List(c *gin.Context) {
	page, limit := pagination(c)
	stories, total, err := h.storyService.List(page, limit, c.Query("keyword"))
	if err != nil {
		respondError(c, "stories.list", err)
		return
	}
	common.SuccessWithMeta(c, stories, common.NewMeta(page, limit, total))
}

// Create godoc
// @Summary      Publish a new story or save a draft
// @Tags         stories
// @Security     BearerAuth
// @Param        request body domain.PublishRequest true "story content"
// @Success      201  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /stories [post]
func (h *StoryHandler) Create(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req domain.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	story, err := h.storyService.Create(caller.ID, &req)
	if err != nil {
		respondError(c, "stories.create", err)
		return
	}
	common.Created(c, story)
}

// Get godoc
// @Summary      A story at its current published revision
// @Tags         stories
// @Param        slug  path  string  true  "story slug"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /stories/{slug} [get]
func (h *StoryHandler) Get(c *gin.Context) {
	story, err := h.storyService.Get(c.Param("slug"))
	if err != nil {
		respondError(c, "stories.get", err)
		return
	}
	common.Success(c, story)
}

// Revise godoc
// @Summary      Add a revision to an existing story
// @Tags         stories
// @Security     BearerAuth
// @Param        slug     path  string                 true  "story slug"
// @Param        request  body  domain.PublishRequest  true  "revised content"
// @Success      201  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /stories/{slug}/revise [post]
func (h *StoryHandler) Revise(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req domain.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	story, err := h.storyService.Revise(caller.ID, c.Param("slug"), &req)
	if err != nil {
		respondError(c, "stories.revise", err)
		return
	}
	common.Created(c, story)
}

// History godoc
// @Summary      Published revision history for a story
// @Tags         stories
// @Param        slug  path  string  true  "story slug"
// @Success      200  {object}  common.APIResponse
// @Router       /stories/{slug}/history [get]
func (h *StoryHandler) History(c *gin.Context) {
	page, limit := pagination(c)
	revs, total, err := h.storyService.History(c.Param("slug"), page, limit)
	if err != nil {
		respondError(c, "stories.history", err)
		return
	}
	common.SuccessWithMeta(c, revs, common.NewMeta(page, limit, total))
}

// Revision godoc
// @Summary      A single revision with full body
// @Tags         stories
// @Param        slug  path  string  true  "story slug"
// @Param        id    path  int     true  "revision id"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.APIResponse
// @Router       /stories/{slug}/revisions/{id} [get]
func (h *StoryHandler) Revision(c *gin.Context) {
	revisionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid revision ID.")
		return
	}

	var callerID uint64
	if caller := middleware.Caller(c); caller != nil {
		callerID = caller.ID
	}

	rev, err := h.storyService.RevisionAt(c.Param("slug"), revisionID, callerID)
	if err != nil {
		respondError(c, "stories.revision", err)
		return
	}
	common.Success(c, rev)
}

// Drafts godoc
// @Summary      The caller's unpublished drafts
// @Tags         stories
// @Security     BearerAuth
// @Param        slug  query  string  false  "limit to one story"
// @Success      200  {object}  common.APIResponse
// @Router       /me/drafts [get]
func (h *StoryHandler) Drafts(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	drafts, err := h.storyService.Drafts(caller.ID, c.Query("slug"))
	if err != nil {
		respondError(c, "stories.drafts", err)
		return
	}
	common.Success(c, drafts)
}

// Remove godoc
// @Summary      Hide a story from public listings (staff)
// @Tags         moderation
// @Security     BearerAuth
// @Param        slug     path  string              true  "story slug"
// @Param        request  body  RemoveStoryRequest  true  "removal reason"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.APIResponse
// @Router       /stories/{slug} [delete]
func (h *StoryHandler) Remove(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req RemoveStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.storyService.Remove(caller.ID, c.Param("slug"), req.Reason, actionContext(c)); err != nil {
		respondError(c, "stories.remove", err)
		return
	}
	common.Success(c, gin.H{"message": "Story removed."})
}

// pagination reads page/limit query params, clamped to the same bounds the
// services enforce so the response meta matches the query actually run.
// Unparseable values fall back to the defaults.
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
