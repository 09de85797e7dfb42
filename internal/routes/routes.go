// Package routes wires handlers and middleware onto the router.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/handler"
	"github.com/localore/localore-backend/internal/middleware"
	"github.com/localore/localore-backend/internal/repository"
	"github.com/localore/localore-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	storyHandler *handler.StoryHandler,
	commentHandler *handler.CommentHandler,
	disputeHandler *handler.DisputeHandler,
	moderationHandler *handler.ModerationHandler,
	jwtManager *jwt.Manager,
	userRepo repository.UserRepository,
) {
	authed := middleware.Authenticate(jwtManager, userRepo)
	maybeAuthed := middleware.MaybeAuthenticate(jwtManager, userRepo)
	active := middleware.RequireActive()
	staff := middleware.RequireStaff()
	admin := middleware.RequireRole(domain.RoleAdmin)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authed, authHandler.Me)
		auth.PUT("/email", authed, active, authHandler.UpdateEmail)
		auth.PUT("/password", authed, active, authHandler.UpdatePassword)
	}

	stories := api.Group("/stories")
	{
		stories.GET("", storyHandler.List)
		stories.POST("", authed, active, storyHandler.Create)
		stories.GET("/:slug", storyHandler.Get)
		stories.POST("/:slug/revise", authed, active, storyHandler.Revise)
		stories.GET("/:slug/history", storyHandler.History)
		stories.GET("/:slug/revisions/:id", maybeAuthed, storyHandler.Revision)
		stories.DELETE("/:slug", authed, staff, storyHandler.Remove)

		stories.GET("/:slug/comments", commentHandler.List)
		stories.POST("/:slug/comments", authed, commentHandler.Create)
	}

	api.GET("/me/drafts", authed, storyHandler.Drafts)
	api.DELETE("/comments/:id", authed, active, commentHandler.Delete)

	disputes := api.Group("/disputes", authed)
	{
		disputes.POST("", active, disputeHandler.File)
		disputes.GET("", staff, disputeHandler.List)
		disputes.PUT("/:id/resolve", staff, disputeHandler.Resolve)
	}

	moderation := api.Group("/moderation", authed, staff)
	{
		moderation.GET("/users", moderationHandler.ListUsers)
		moderation.POST("/users/:id/ban", moderationHandler.Ban)
		moderation.POST("/users/:id/mute", moderationHandler.Mute)
		moderation.GET("/audit-logs", moderationHandler.AuditLogs)
	}

	api.PUT("/admin/users/:id/role", authed, admin, moderationHandler.ChangeRole)
}
