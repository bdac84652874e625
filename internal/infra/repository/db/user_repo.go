package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo struct {
	db *DbDao
}

func NewUserRepo(db *DbDao) *UserRepo {
	return &UserRepo{db: db}
}

// Create - 創建用戶
func (s *UserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Read - 根據ID查詢用戶
func (s *UserRepo) GetUserByID(ctx context.Context, id int) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "user_id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Read - 根據Email查詢用戶
func (s *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("user_email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update - 更新用戶
func (s *UserRepo) UpdateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// Delete - 軟刪除用戶
func (s *UserRepo) DeleteUser(ctx context.Context, id int) error {
	return s.db.WithContext(ctx).Delete(&model.User{}, "user_id = ?", id).Error
}
