package dao

import (
	"context"
	"errors"

	"cryptosignals/internal/model/entity"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExist    = errors.New("user already exists")
)

type UserDao interface {
	// 根据邮箱获取user实体
	UserGetByEmail(ctx context.Context, email string) (entity.User, error)
	UserGetById(ctx context.Context, userId int64) (entity.User, error)
	// 创建用户，邮箱已存在时返回 ErrUserExist
	UserCreate(ctx context.Context, user *entity.User) error
	// 更新用户角色和订阅计划
	UserUpdateRoleAndPlan(ctx context.Context, email, role, plan string) error
	UserList(ctx context.Context) ([]entity.User, error)
	UserDelete(ctx context.Context, userId int64) error
}
