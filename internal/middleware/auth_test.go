package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/migration"
	"github.com/localore/localore-backend/internal/repository"
	"github.com/localore/localore-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupAuthTest(t *testing.T) (*gin.Engine, *gorm.DB, *jwt.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))

	manager := jwt.NewManager("test-secret", 3600)
	router := gin.New()
	router.GET("/whoami", Authenticate(manager, repository.NewUserRepository(db)), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": Caller(c).Username})
	})
	router.GET("/staff", Authenticate(manager, repository.NewUserRepository(db)), RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, db, manager
}

func seedUser(t *testing.T, db *gorm.DB, username, role string, banned bool) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
		IsBanned: banned,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func token(t *testing.T, manager *jwt.Manager, userID uint64) string {
	t.Helper()
	tok, err := manager.GenerateToken(strconv.FormatUint(userID, 10))
	require.NoError(t, err)
	return tok
}

func TestAuthenticate_MissingToken(t *testing.T) {
	router, _, _ := setupAuthTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_Cookie(t *testing.T) {
	router, db, manager := setupAuthTest(t)
	user := seedUser(t, db, "alice", domain.RoleContributor, false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token(t, manager, user.ID)})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
}

func TestAuthenticate_BearerFallback(t *testing.T) {
	router, db, manager := setupAuthTest(t)
	user := seedUser(t, db, "alice", domain.RoleContributor, false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, manager, user.ID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	router, _, _ := setupAuthTest(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_DeletedAccount(t *testing.T) {
	router, _, manager := setupAuthTest(t)

	// Valid signature but no matching account row
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, manager, 9999))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_NoSecretConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))

	router := gin.New()
	router.GET("/whoami", Authenticate(jwt.NewManager("", 3600), repository.NewUserRepository(db)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errInfo := body["error"].(map[string]any)
	assert.Equal(t, "CONFIG_ERROR", errInfo["code"])
}

func TestRequireStaff(t *testing.T) {
	router, db, manager := setupAuthTest(t)
	contributor := seedUser(t, db, "alice", domain.RoleContributor, false)
	mod := seedUser(t, db, "mod", domain.RoleModerator, false)
	bannedMod := seedUser(t, db, "exmod", domain.RoleModerator, true)

	cases := []struct {
		name   string
		userID uint64
		want   int
	}{
		{"contributor rejected", contributor.ID, http.StatusForbidden},
		{"moderator allowed", mod.ID, http.StatusOK},
		{"banned staff rejected", bannedMod.ID, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/staff", nil)
			req.Header.Set("Authorization", "Bearer "+token(t, manager, tc.userID))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestMaybeAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))

	manager := jwt.NewManager("test-secret", 3600)
	router := gin.New()
	router.GET("/peek", MaybeAuthenticate(manager, repository.NewUserRepository(db)), func(c *gin.Context) {
		if caller := Caller(c); caller != nil {
			c.JSON(http.StatusOK, gin.H{"username": caller.Username})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": ""})
	})

	// Anonymous passes through
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/peek", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Garbage token also passes through, just without a caller
	req := httptest.NewRequest(http.MethodGet, "/peek", nil)
	req.Header.Set("Authorization", "Bearer junk")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	user := seedUser(t, db, "alice", domain.RoleContributor, false)
	req = httptest.NewRequest(http.MethodGet, "/peek", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, manager, user.ID))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
}
