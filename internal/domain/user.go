package domain

import "time"

// User roles. Role is only changed through explicit moderation actions.
const (
	RoleContributor = "contributor"
	RoleModerator   = "moderator"
	RoleAdmin       = "admin"
)

// IsStaff reports whether a role grants elevated route access
func IsStaff(role string) bool {
	return role == RoleModerator || role == RoleAdmin
}

// User represents a registered account
type User struct {
	ID         uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username   string     `gorm:"column:username;type:varchar(50);uniqueIndex" json:"username"`
	Email      string     `gorm:"column:email;type:varchar(255);uniqueIndex" json:"email"`
	Password   string     `gorm:"column:password;type:varchar(255)" json:"-"`
	Role       string     `gorm:"column:role;type:varchar(20);default:'contributor'" json:"role"`
	IsBanned   bool       `gorm:"column:is_banned;default:false" json:"is_banned"`
	IsMuted    bool       `gorm:"column:is_muted;default:false" json:"is_muted"`
	MutedUntil *time.Time `gorm:"column:muted_until" json:"muted_until,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	LastLogin  *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
}

func (User) TableName() string { return "users" }

// MutedNow reports whether the user is muted at the given instant.
// A nil MutedUntil with IsMuted set means an indefinite mute.
func (u *User) MutedNow(now time.Time) bool {
	if !u.IsMuted {
		return false
	}
	if u.MutedUntil == nil {
		return true
	}
	return now.Before(*u.MutedUntil)
}

// PublicUser is the user shape exposed to other users
type PublicUser struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublic converts a User to its public representation
func (u *User) ToPublic() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// StaffUserResponse is the user shape returned on staff user listings
type StaffUserResponse struct {
	ID         uint64     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	IsBanned   bool       `json:"is_banned"`
	IsMuted    bool       `json:"is_muted"`
	MutedUntil *time.Time `json:"muted_until,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// ToStaffResponse converts a User to its staff-listing representation
func (u *User) ToStaffResponse() StaffUserResponse {
	return StaffUserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsBanned:   u.IsBanned,
		IsMuted:    u.IsMuted,
		MutedUntil: u.MutedUntil,
		CreatedAt:  u.CreatedAt,
		LastLogin:  u.LastLogin,
	}
}
