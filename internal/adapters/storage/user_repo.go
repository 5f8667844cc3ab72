package storage

import (
	"context"
	"errors"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
	"gorm.io/gorm"
)

// Ensure interface compliance
var _ ports.UserRepository = (*SQLiteAdapter)(nil)

var ErrUserNotFound = errors.New("user not found")

// UserModel is the operator account row. Roles are indexed for the admin
// bootstrap check and role-filtered listings.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"index;not null"`
	CreatedAt    time.Time
	LastLogin    time.Time
}

func (UserModel) TableName() string { return "users" }

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
	}
}

func userToDomain(m UserModel) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt,
		LastLogin:    m.LastLogin,
	}
}

// Save creates or updates an account. Unknown roles never reach the table.
func (a *SQLiteAdapter) Save(ctx context.Context, user domain.User) error {
	if !user.Role.IsValid() {
		return domain.ErrInvalidRole
	}
	model := userToModel(user)
	return a.db.WithContext(ctx).Save(&model).Error
}

func (a *SQLiteAdapter) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return a.findUser(ctx, "username = ?", username)
}

func (a *SQLiteAdapter) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return a.findUser(ctx, "id = ?", id)
}

func (a *SQLiteAdapter) findUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	var model UserModel
	if err := a.db.WithContext(ctx).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return userToDomain(model), nil
}

// List returns accounts ordered by username. An empty role lists everyone.
func (a *SQLiteAdapter) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	q := a.db.WithContext(ctx).Order("username")
	if role != "" {
		q = q.Where("role = ?", string(role))
	}

	var models []UserModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, *userToDomain(m))
	}
	return users, nil
}

// CountByRole counts accounts holding exactly role.
func (a *SQLiteAdapter) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var n int64
	err := a.db.WithContext(ctx).Model(&UserModel{}).Where("role = ?", string(role)).Count(&n).Error
	return n, err
}
