package service

import (
	"testing"
	"time"

	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newModerationService(db *gorm.DB) *ModerationService {
	return NewModerationService(db, repository.NewUserRepository(db), repository.NewAuditRepository(db))
}

func TestBan_Success(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)
	mod := createUser(t, db, "mod", domain.RoleModerator)
	target := createUser(t, db, "troll", domain.RoleContributor)

	banned, err := svc.Ban(mod, target.ID, "spam", ActionContext{ClientIP: "10.0.0.1", RequestID: "req-1"})
	require.NoError(t, err)
	assert.True(t, banned.IsBanned)

	var stored domain.User
	require.NoError(t, db.First(&stored, target.ID).Error)
	assert.True(t, stored.IsBanned)

	var entry domain.AuditLog
	require.NoError(t, db.Where("action = ?", domain.AuditActionBan).First(&entry).Error)
	assert.Equal(t, mod.ID, entry.ActorID)
	assert.Equal(t, target.ID, entry.TargetID)
	assert.Equal(t, "troll", entry.TargetName)
	assert.Equal(t, "spam", entry.Reason)
	assert.Equal(t, "10.0.0.1", entry.ClientIP)
}

func TestBan_AlreadyBanned(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)
	mod := createUser(t, db, "mod", domain.RoleModerator)
	target := createUser(t, db, "troll", domain.RoleContributor)

	_, err := svc.Ban(mod, target.ID, "spam", ActionContext{})
	require.NoError(t, err)

	_, err = svc.Ban(mod, target.ID, "spam again", ActionContext{})
	assert.ErrorIs(t, err, common.ErrAlreadyBanned)

	// The rejected second attempt must not add an audit entry
	assert.EqualValues(t, 1, countAudits(t, db, domain.AuditActionBan))
}

func TestBan_Guards(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)
	mod := createUser(t, db, "mod", domain.RoleModerator)
	admin := createUser(t, db, "root", domain.RoleAdmin)

	_, err := svc.Ban(mod, mod.ID, "abuse", ActionContext{})
	assert.ErrorIs(t, err, common.ErrSelfTarget)

	_, err = svc.Ban(mod, admin.ID, "abuse", ActionContext{})
	assert.ErrorIs(t, err, common.ErrTargetIsAdmin)

	_, err = svc.Ban(mod, 9999, "abuse", ActionContext{})
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	_, err = svc.Ban(mod, admin.ID, "x", ActionContext{})
	assert.ErrorIs(t, err, common.ErrReasonTooShort)

	assert.EqualValues(t, 0, countAudits(t, db, domain.AuditActionBan))
}

func TestMute_WithDuration(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)
	mod := createUser(t, db, "mod", domain.RoleModerator)
	target := createUser(t, db, "noisy", domain.RoleContributor)

	before := time.Now()
	muted, err := svc.Mute(mod, target.ID, "flame war", 24, ActionContext{})
	require.NoError(t, err)
	require.NotNil(t, muted.MutedUntil)

	expiry := muted.MutedUntil.Sub(before)
	assert.InDelta(t, (24 * time.Hour).Seconds(), expiry.Seconds(), 5)

	var entry domain.AuditLog
	require.NoError(t, db.Where("action = ?", domain.AuditActionMute).First(&entry).Error)
	assert.Contains(t, entry.Reason, "duration: 24h")
}

func TestMute_Indefinite(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)
	mod := createUser(t, db, "mod", domain.RoleModerator)
	target := createUser(t, db, "noisy", domain.RoleContributor)

	muted, err := svc.Mute(mod, target.ID, "flame war", 0, ActionContext{})
	require.NoError(t, err)
	assert.True(t, muted.IsMuted)
	assert.Nil(t, muted.MutedUntil)

	var entry domain.AuditLog
	require.NoError(t, db.Where("action = ?", domain.AuditActionMute).First(&entry).Error)
	assert.Contains(t, entry.Reason, "duration: indefinite")

	// A negative duration reads the same as an omitted one
	other := createUser(t, db, "louder", domain.RoleContributor)
	muted, err = svc.Mute(mod, other.ID, "still at it", -12, ActionContext{})
	require.NoError(t, err)
	assert.True(t, muted.IsMuted)
	assert.Nil(t, muted.MutedUntil)
}

func TestMute_BannedTarget(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)
	mod := createUser(t, db, "mod", domain.RoleModerator)
	target := createUser(t, db, "troll", domain.RoleContributor)

	_, err := svc.Ban(mod, target.ID, "spam", ActionContext{})
	require.NoError(t, err)

	_, err = svc.Mute(mod, target.ID, "still at it", 0, ActionContext{})
	assert.ErrorIs(t, err, common.ErrBannedFirst)
}

func TestChangeRole(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)
	admin := createUser(t, db, "root", domain.RoleAdmin)
	target := createUser(t, db, "helper", domain.RoleContributor)

	promoted, err := svc.ChangeRole(admin, target.ID, domain.RoleModerator, ActionContext{})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, promoted.Role)

	var entry domain.AuditLog
	require.NoError(t, db.Where("action = ?", domain.AuditActionRoleChange).First(&entry).Error)
	assert.Contains(t, entry.Reason, "from contributor to moderator")

	// Demotion goes through the same path
	demoted, err := svc.ChangeRole(admin, target.ID, domain.RoleContributor, ActionContext{})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleContributor, demoted.Role)
}

func TestChangeRole_Guards(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)
	admin := createUser(t, db, "root", domain.RoleAdmin)
	other := createUser(t, db, "root2", domain.RoleAdmin)
	target := createUser(t, db, "helper", domain.RoleContributor)

	_, err := svc.ChangeRole(admin, target.ID, domain.RoleAdmin, ActionContext{})
	assert.ErrorIs(t, err, common.ErrInvalidRole)

	_, err = svc.ChangeRole(admin, target.ID, "owner", ActionContext{})
	assert.ErrorIs(t, err, common.ErrInvalidRole)

	_, err = svc.ChangeRole(admin, admin.ID, domain.RoleModerator, ActionContext{})
	assert.ErrorIs(t, err, common.ErrSelfTarget)

	_, err = svc.ChangeRole(admin, other.ID, domain.RoleContributor, ActionContext{})
	assert.ErrorIs(t, err, common.ErrTargetIsAdmin)
}

func TestAuditLogs_Filters(t *testing.T) {
	db := newTestDB(t)
	svc := newModerationService(db)
	mod := createUser(t, db, "mod", domain.RoleModerator)
	admin := createUser(t, db, "root", domain.RoleAdmin)
	a := createUser(t, db, "usera", domain.RoleContributor)
	b := createUser(t, db, "userb", domain.RoleContributor)

	_, err := svc.Ban(mod, a.ID, "spam", ActionContext{})
	require.NoError(t, err)
	_, err = svc.Mute(admin, b.ID, "noise", 1, ActionContext{})
	require.NoError(t, err)

	logs, total, err := svc.AuditLogs(0, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, logs, 2)

	logs, total, err = svc.AuditLogs(mod.ID, "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, domain.AuditActionBan, logs[0].Action)

	_, total, err = svc.AuditLogs(0, domain.AuditActionMute, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
