package service

import (
	"testing"

	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/localore/localore-backend/pkg/jwt"
)

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(repository.NewUserRepository(db), jwt.NewManager("test-secret", 3600))
}

func TestRegister_Success(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register("alice", "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, domain.RoleContributor, resp.User.Role)
	assert.NotEmpty(t, resp.Token)

	// Password is stored hashed
	var stored domain.User
	require.NoError(t, db.Where("username = ?", "alice").First(&stored).Error)
	assert.NotEqual(t, "hunter2hunter2", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("hunter2hunter2")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register("alice", "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Register("alice2", "alice@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	_, err = svc.Register("alice", "other@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register("alice", "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	resp, err := svc.Login("alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	var stored domain.User
	require.NoError(t, db.Where("username = ?", "alice").First(&stored).Error)
	assert.NotNil(t, stored.LastLogin)

	_, err = svc.Login("alice", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = svc.Login("nobody", "hunter2hunter2")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLogin_BannedAccount(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register("troll", "troll@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.User{}).Where("username = ?", "troll").
		Update("is_banned", true).Error)

	_, err = svc.Login("troll", "hunter2hunter2")
	assert.ErrorIs(t, err, common.ErrAccountSuspended)
}

func TestUpdateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	a, err := svc.Register("alice", "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	_, err = svc.Register("bob", "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)

	// Keeping your own email is not a conflict
	assert.NoError(t, svc.UpdateEmail(a.User.ID, "alice@example.com"))
	assert.NoError(t, svc.UpdateEmail(a.User.ID, "new@example.com"))
	assert.ErrorIs(t, svc.UpdateEmail(a.User.ID, "bob@example.com"), common.ErrEmailTaken)
}

func TestUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	a, err := svc.Register("alice", "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdatePassword(a.User.ID, "wrong", "newpassword1"), common.ErrInvalidCredentials)
	require.NoError(t, svc.UpdatePassword(a.User.ID, "hunter2hunter2", "newpassword1"))

	_, err = svc.Login("alice", "newpassword1")
	assert.NoError(t, err)
}
