package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/handler"
	"github.com/localore/localore-backend/internal/migration"
	"github.com/localore/localore-backend/internal/repository"
	"github.com/localore/localore-backend/internal/routes"
	"github.com/localore/localore-backend/internal/service"
	"github.com/localore/localore-backend/pkg/jwt"
)

// APISuite exercises the HTTP surface end to end against SQLite
type APISuite struct {
	suite.Suite
	db         *gorm.DB
	router     *gin.Engine
	jwtManager *jwt.Manager
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(migration.Run(db))
	s.db = db

	s.jwtManager = jwt.NewManager("integration-test-secret", 3600)
	handler.RegisterValidators()

	userRepo := repository.NewUserRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	tagRepo := repository.NewTagRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	disputeRepo := repository.NewDisputeRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authService := service.NewAuthService(userRepo, s.jwtManager)
	storyService := service.NewStoryService(db, storyRepo, revisionRepo, tagRepo, userRepo, auditRepo)
	commentService := service.NewCommentService(db, commentRepo, storyRepo, userRepo, auditRepo)
	disputeService := service.NewDisputeService(db, disputeRepo, userRepo, storyRepo, revisionRepo, commentRepo, auditRepo)
	moderationService := service.NewModerationService(db, userRepo, auditRepo)

	s.router = gin.New()
	routes.Setup(
		s.router,
		handler.NewAuthHandler(authService),
		handler.NewStoryHandler(storyService),
		handler.NewCommentHandler(commentService),
		handler.NewDisputeHandler(disputeService),
		handler.NewModerationHandler(moderationService),
		s.jwtManager,
		userRepo,
	)
}

// seedUser inserts an account directly and returns a bearer token for it
func (s *APISuite) seedUser(username, role string) (*domain.User, string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		Role:     role,
	}
	s.Require().NoError(s.db.Create(user).Error)

	token, err := s.jwtManager.GenerateToken(fmt.Sprintf("%d", user.ID))
	s.Require().NoError(err)
	return user, token
}

func (s *APISuite) request(method, path, token string, payload any) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *APISuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// --- Auth ---

func (s *APISuite) TestRegister_ThenDuplicateEmail() {
	w := s.request(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	s.Equal(http.StatusCreated, w.Code)

	resp := s.decode(w)
	s.True(resp["success"].(bool))
	data := resp["data"].(map[string]any)
	s.NotEmpty(data["token"])
	user := data["user"].(map[string]any)
	s.Equal("alice", user["username"])
	s.Equal("contributor", user["role"])

	// Same email, different username
	w = s.request(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "password123",
	})
	s.Equal(http.StatusConflict, w.Code)
	resp = s.decode(w)
	s.False(resp["success"].(bool))
	errInfo := resp["error"].(map[string]any)
	s.Equal("Email already in use.", errInfo["message"])
}

func (s *APISuite) TestLogin_SetsCookie() {
	s.seedUser("alice", domain.RoleContributor)

	w := s.request(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	s.Equal(http.StatusOK, w.Code)

	var found bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "auth_token" && cookie.Value != "" {
			found = true
			s.True(cookie.HttpOnly)
		}
	}
	s.True(found, "expected auth_token cookie")
}

func (s *APISuite) TestMe_RequiresAuth() {
	s.Equal(http.StatusUnauthorized, s.request(http.MethodGet, "/api/auth/me", "", nil).Code)

	_, token := s.seedUser("alice", domain.RoleContributor)
	w := s.request(http.MethodGet, "/api/auth/me", token, nil)
	s.Equal(http.StatusOK, w.Code)
}

// --- Stories ---

func (s *APISuite) publishStory(token, title string) string {
	w := s.request(http.MethodPost, "/api/stories", token, map[string]any{
		"title": title,
		"body":  "Something happened here once.",
		"tags":  []string{"history"},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	data := s.decode(w)["data"].(map[string]any)
	return data["slug"].(string)
}

func (s *APISuite) TestStoryLifecycle() {
	_, token := s.seedUser("alice", domain.RoleContributor)
	slug := s.publishStory(token, "Old Mill Fire of 1912")
	s.Equal("old-mill-fire-of-1912", slug)

	// Public read without auth
	w := s.request(http.MethodGet, "/api/stories/"+slug, "", nil)
	s.Equal(http.StatusOK, w.Code)
	data := s.decode(w)["data"].(map[string]any)
	rev := data["revision"].(map[string]any)
	s.Equal("Old Mill Fire of 1912", rev["title"])

	// Another contributor revises
	_, bobToken := s.seedUser("bob", domain.RoleContributor)
	w = s.request(http.MethodPost, "/api/stories/"+slug+"/revise", bobToken, map[string]any{
		"title":          "Old Mill Fire of 1912",
		"body":           "Corrected: it was 1913.",
		"change_message": "fixed the year",
	})
	s.Equal(http.StatusCreated, w.Code)

	// History shows both revisions, newest first
	w = s.request(http.MethodGet, "/api/stories/"+slug+"/history", "", nil)
	s.Equal(http.StatusOK, w.Code)
	resp := s.decode(w)
	revs := resp["data"].([]any)
	s.Len(revs, 2)
	meta := resp["meta"].(map[string]any)
	s.EqualValues(2, meta["total"])

	// Current content reflects the revision
	w = s.request(http.MethodGet, "/api/stories/"+slug, "", nil)
	data = s.decode(w)["data"].(map[string]any)
	rev = data["revision"].(map[string]any)
	s.Contains(rev["body"], "1913")
}

func (s *APISuite) TestList_GarbageLimitFallsBack() {
	_, token := s.seedUser("alice", domain.RoleContributor)
	s.publishStory(token, "Old Mill Fire of 1912")

	for _, q := range []string{"limit=0", "limit=abc", "limit=-5", "page=zzz"} {
		w := s.request(http.MethodGet, "/api/stories?"+q, "", nil)
		s.Equal(http.StatusOK, w.Code, q)

		resp := s.decode(w)
		meta := resp["meta"].(map[string]any)
		s.EqualValues(20, meta["limit"], q)
		s.EqualValues(1, meta["total_pages"], q)
		s.Len(resp["data"].([]any), 1, q)
	}
}

func (s *APISuite) TestStory_InvalidSlugRejected() {
	_, token := s.seedUser("alice", domain.RoleContributor)

	w := s.request(http.MethodPost, "/api/stories", token, map[string]any{
		"slug":  "Not A Slug!",
		"title": "Whatever",
		"body":  "text",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestStory_StaffRemove() {
	_, authorToken := s.seedUser("alice", domain.RoleContributor)
	slug := s.publishStory(authorToken, "Contested Story")

	// Author is not staff
	w := s.request(http.MethodDelete, "/api/stories/"+slug, authorToken, map[string]string{"reason": "mine"})
	s.Equal(http.StatusForbidden, w.Code)

	_, modToken := s.seedUser("mod", domain.RoleModerator)
	w = s.request(http.MethodDelete, "/api/stories/"+slug, modToken, map[string]string{"reason": "copyright"})
	s.Equal(http.StatusOK, w.Code)

	s.Equal(http.StatusNotFound, s.request(http.MethodGet, "/api/stories/"+slug, "", nil).Code)
}

// --- Comments ---

func (s *APISuite) TestComments() {
	_, authorToken := s.seedUser("alice", domain.RoleContributor)
	slug := s.publishStory(authorToken, "Harbor Strike")

	_, readerToken := s.seedUser("bob", domain.RoleContributor)
	w := s.request(http.MethodPost, "/api/stories/"+slug+"/comments", readerToken, map[string]any{
		"body": "My grandmother was there.",
	})
	s.Require().Equal(http.StatusCreated, w.Code)
	commentID := uint64(s.decode(w)["data"].(map[string]any)["id"].(float64))

	// Anonymous users cannot comment
	w = s.request(http.MethodPost, "/api/stories/"+slug+"/comments", "", map[string]any{"body": "anon"})
	s.Equal(http.StatusUnauthorized, w.Code)

	// Threaded listing is public
	w = s.request(http.MethodGet, "/api/stories/"+slug+"/comments", "", nil)
	s.Equal(http.StatusOK, w.Code)
	threads := s.decode(w)["data"].([]any)
	s.Len(threads, 1)

	// Author deletes their own comment
	w = s.request(http.MethodDelete, fmt.Sprintf("/api/comments/%d", commentID), readerToken, nil)
	s.Equal(http.StatusOK, w.Code)

	var stored domain.Comment
	s.Require().NoError(s.db.First(&stored, commentID).Error)
	s.Equal(domain.CommentStatusDeletedByUser, stored.Status)
}

// --- Disputes ---

func (s *APISuite) TestDisputeWorkflow() {
	_, authorToken := s.seedUser("alice", domain.RoleContributor)
	slug := s.publishStory(authorToken, "Harbor Strike")

	var story domain.Story
	s.Require().NoError(s.db.Where("slug = ?", slug).First(&story).Error)

	_, reporterToken := s.seedUser("bob", domain.RoleContributor)
	file := map[string]any{
		"target_type": "story",
		"target_id":   story.ID,
		"category":    "misinformation",
		"reason":      "the dates are wrong",
	}

	w := s.request(http.MethodPost, "/api/disputes", reporterToken, file)
	s.Require().Equal(http.StatusCreated, w.Code)
	disputeID := uint64(s.decode(w)["data"].(map[string]any)["id"].(float64))

	// Duplicate filing against the same target
	s.Equal(http.StatusConflict, s.request(http.MethodPost, "/api/disputes", reporterToken, file).Code)

	// Queue is staff-only
	s.Equal(http.StatusForbidden, s.request(http.MethodGet, "/api/disputes", reporterToken, nil).Code)

	_, modToken := s.seedUser("mod", domain.RoleModerator)
	w = s.request(http.MethodGet, "/api/disputes", modToken, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Len(s.decode(w)["data"].([]any), 1)

	// Resolve and verify the terminal state refuses further moves
	resolve := fmt.Sprintf("/api/disputes/%d/resolve", disputeID)
	w = s.request(http.MethodPut, resolve, modToken, map[string]string{
		"status": "resolved",
		"notes":  "corrected the article",
	})
	s.Equal(http.StatusOK, w.Code)

	w = s.request(http.MethodPut, resolve, modToken, map[string]string{"status": "dismissed"})
	s.Equal(http.StatusConflict, w.Code)
}

// --- Moderation ---

func (s *APISuite) TestBanMatrix() {
	mod, modToken := s.seedUser("mod", domain.RoleModerator)
	admin, _ := s.seedUser("root", domain.RoleAdmin)
	target, _ := s.seedUser("troll", domain.RoleContributor)

	ban := func(id uint64, reason string) *httptest.ResponseRecorder {
		return s.request(http.MethodPost, fmt.Sprintf("/api/moderation/users/%d/ban", id), modToken,
			map[string]string{"reason": reason})
	}

	// Self-ban
	s.Equal(http.StatusBadRequest, ban(mod.ID, "oops").Code)

	// Admin target
	s.Equal(http.StatusForbidden, ban(admin.ID, "power grab").Code)

	// Success
	w := ban(target.ID, "spam")
	s.Equal(http.StatusOK, w.Code)
	data := s.decode(w)["data"].(map[string]any)
	s.True(data["is_banned"].(bool))

	// Repeat ban
	s.Equal(http.StatusConflict, ban(target.ID, "spam").Code)

	// Exactly one audit entry for the one successful action
	var n int64
	s.Require().NoError(s.db.Model(&domain.AuditLog{}).
		Where("action = ?", domain.AuditActionBan).Count(&n).Error)
	s.EqualValues(1, n)

	// Banned account can no longer sign in
	w = s.request(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "troll",
		"password": "password123",
	})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APISuite) TestMute_NegativeDurationIsIndefinite() {
	_, modToken := s.seedUser("mod", domain.RoleModerator)
	target, _ := s.seedUser("loud", domain.RoleContributor)

	w := s.request(http.MethodPost, fmt.Sprintf("/api/moderation/users/%d/mute", target.ID), modToken,
		map[string]any{"reason": "flamewar", "duration_hours": -5})
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	var stored domain.User
	s.Require().NoError(s.db.First(&stored, target.ID).Error)
	s.True(stored.IsMuted)
	s.Nil(stored.MutedUntil)
}

func (s *APISuite) TestRoleChange_AdminOnly() {
	_, modToken := s.seedUser("mod", domain.RoleModerator)
	_, adminToken := s.seedUser("root", domain.RoleAdmin)
	target, _ := s.seedUser("helper", domain.RoleContributor)

	path := fmt.Sprintf("/api/admin/users/%d/role", target.ID)

	// Moderators cannot change roles
	w := s.request(http.MethodPut, path, modToken, map[string]string{"role": "moderator"})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodPut, path, adminToken, map[string]string{"role": "moderator"})
	s.Equal(http.StatusOK, w.Code)
	data := s.decode(w)["data"].(map[string]any)
	s.Equal("moderator", data["role"])

	// Promoting to admin is not supported on this path
	w = s.request(http.MethodPut, path, adminToken, map[string]string{"role": "admin"})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestAuditLogs_StaffOnly() {
	_, userToken := s.seedUser("alice", domain.RoleContributor)
	_, modToken := s.seedUser("mod", domain.RoleModerator)

	s.Equal(http.StatusForbidden, s.request(http.MethodGet, "/api/moderation/audit-logs", userToken, nil).Code)

	w := s.request(http.MethodGet, "/api/moderation/audit-logs", modToken, nil)
	s.Equal(http.StatusOK, w.Code)
}
