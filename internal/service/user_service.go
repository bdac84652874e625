package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/telecom_shop/internal/domain/model"
	"github.com/RoyceAzure/lab/telecom_shop/internal/infra/repository/db"
)

var (
	ErrUserNotExist = errors.New("user is not exist")
)

type UserService struct {
	userRepo db.IUserRepository
}

func NewUserService(userRepo db.IUserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (u *UserService) GetUser(ctx context.Context, userID int) (*model.User, error) {
	user, err := u.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrUserNotExist
		}
		return nil, err
	}
	return user, nil
}

func (u *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrUserNotExist
		}
		return nil, err
	}
	return user, nil
}

func (u *UserService) RegisterUser(ctx context.Context, user *model.User) (*model.User, error) {
	return u.userRepo.CreateUser(ctx, user)
}
