package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/middleware"
	"github.com/localore/localore-backend/internal/service"
)

// AuthHandler serves registration, login and account endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest is the signup payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateEmailRequest is the email change payload
type UpdateEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdatePasswordRequest is the password change payload
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// Register godoc
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "signup payload"
// @Success      201  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	resp, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, "auth.register", err)
		return
	}

	h.setAuthCookie(c, resp.Token)
	common.Created(c, resp)
}

// Login godoc
// @Summary      Sign in with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "credentials"
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.APIResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	resp, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		respondError(c, "auth.login", err)
		return
	}

	h.setAuthCookie(c, resp.Token)
	common.Success(c, resp)
}

// Logout godoc
// @Summary      Clear the session cookie
// @Tags         auth
// @Success      200  {object}  common.APIResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", false, true)
	common.Success(c, gin.H{"message": "Logged out."})
}

// Me godoc
// @Summary      Current account
// @Tags         auth
// @Security     BearerAuth
// @Success      200  {object}  common.APIResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}
	common.Success(c, caller.ToPublic())
}

// UpdateEmail godoc
// @Summary      Change the caller's email
// @Tags         auth
// @Security     BearerAuth
// @Param        request body UpdateEmailRequest true "new email"
// @Success      200  {object}  common.APIResponse
// @Failure      409  {object}  common.APIResponse
// @Router       /auth/email [put]
func (h *AuthHandler) UpdateEmail(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req UpdateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.authService.UpdateEmail(caller.ID, req.Email); err != nil {
		respondError(c, "auth.update_email", err)
		return
	}
	common.Success(c, gin.H{"message": "Email updated."})
}

// UpdatePassword godoc
// @Summary      Change the caller's password
// @Tags         auth
// @Security     BearerAuth
// @Param        request body UpdatePasswordRequest true "current and new password"
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.APIResponse
// @Router       /auth/password [put]
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	caller := middleware.Caller(c)
	if caller == nil {
		common.Error(c, http.StatusUnauthorized, "Authentication required.")
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.authService.UpdatePassword(caller.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, "auth.update_password", err)
		return
	}
	common.Success(c, gin.H{"message": "Password updated."})
}

// setAuthCookie also leaves the token in the body so API clients can use
// a bearer header instead
func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookieName, token, 60*60*24*7, "/", "", false, true)
}
