package query

import (
	"context"
	"errors"

	"cryptosignals/internal/dao"
	"cryptosignals/internal/model/entity"

	"gorm.io/gorm"
)

var _ dao.UserDao = (*userDao)(nil)

type userDao struct {
	ds *gorm.DB
}

func NewUserDao(ds *gorm.DB) *userDao {
	return &userDao{
		ds: ds,
	}
}

// AutoMigrate 创建或更新用户表
func AutoMigrate(ds *gorm.DB) error {
	return ds.AutoMigrate(&entity.User{})
}

func (u *userDao) UserGetByEmail(ctx context.Context, email string) (entity.User, error) {
	var user entity.User
	err := u.ds.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, dao.ErrUserNotFound
	}
	return user, err
}

func (u *userDao) UserGetById(ctx context.Context, userId int64) (entity.User, error) {
	var user entity.User
	err := u.ds.WithContext(ctx).Where("id = ?", userId).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, dao.ErrUserNotFound
	}
	return user, err
}

func (u *userDao) UserCreate(ctx context.Context, user *entity.User) error {
	// 数据库唯一索引兜底，这里先查一次给出明确的错误
	var count int64
	if err := u.ds.WithContext(ctx).Model(&entity.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return dao.ErrUserExist
	}
	err := u.ds.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return dao.ErrUserExist
	}
	return err
}

func (u *userDao) UserUpdateRoleAndPlan(ctx context.Context, email, role, plan string) error {
	// 值未变化时 mysql 的 RowsAffected 为 0，不能用它判断用户是否存在
	user, err := u.UserGetByEmail(ctx, email)
	if err != nil {
		return err
	}
	return u.ds.WithContext(ctx).Model(&entity.User{Id: user.Id}).
		Updates(map[string]interface{}{"role": role, "plan": plan}).Error
}

func (u *userDao) UserList(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := u.ds.WithContext(ctx).Order("created_at desc").Find(&users).Error
	return users, err
}

func (u *userDao) UserDelete(ctx context.Context, userId int64) error {
	return u.ds.WithContext(ctx).Delete(&entity.User{Id: userId}).Error
}
