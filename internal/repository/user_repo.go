package repository

import (
	"time"

	"github.com/localore/localore-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository handles user data access
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	FindByID(id uint64) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	Create(user *domain.User) error
	Update(user *domain.User) error
	UpdateLastLogin(id uint64, at time.Time) error
	SetBanned(id uint64) error
	SetMuted(id uint64, until *time.Time) error
	SetRole(id uint64, role string) error
	FindAll(page, limit int, keyword string) ([]*domain.User, int64, error)
	FindNamesByIDs(ids []uint64) (map[uint64]string, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) FindByID(id uint64) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	return &user, err
}

func (r *userRepository) FindByUsername(username string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("username = ?", username).First(&user).Error
	return &user, err
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *userRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) Update(user *domain.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) UpdateLastLogin(id uint64, at time.Time) error {
	return r.db.Model(&domain.User{}).Where("id = ?", id).
		Update("last_login", at).Error
}

func (r *userRepository) SetBanned(id uint64) error {
	return r.db.Model(&domain.User{}).Where("id = ?", id).
		Update("is_banned", true).Error
}

func (r *userRepository) SetMuted(id uint64, until *time.Time) error {
	return r.db.Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_muted": true, "muted_until": until}).Error
}

func (r *userRepository) SetRole(id uint64, role string) error {
	return r.db.Model(&domain.User{}).Where("id = ?", id).
		Update("role", role).Error
}

func (r *userRepository) FindAll(page, limit int, keyword string) ([]*domain.User, int64, error) {
	var users []*domain.User
	var total int64

	query := r.db.Model(&domain.User{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// FindNamesByIDs batch-loads usernames for the given ids
func (r *userRepository) FindNamesByIDs(ids []uint64) (map[uint64]string, error) {
	if len(ids) == 0 {
		return map[uint64]string{}, nil
	}

	type row struct {
		ID       uint64 `gorm:"column:id"`
		Username string `gorm:"column:username"`
	}
	var rows []row
	err := r.db.Table("users").
		Select("id, username").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	m := make(map[uint64]string, len(rows))
	for _, v := range rows {
		m[v.ID] = v.Username
	}
	return m, nil
}
