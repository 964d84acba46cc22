package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptosignals/conf"
	"cryptosignals/internal/consts"
	"cryptosignals/internal/dao"
	"cryptosignals/internal/model"
	"cryptosignals/internal/model/entity"
	"cryptosignals/internal/session"
	"cryptosignals/internal/signal"
	"cryptosignals/pkg/jwt"
	"cryptosignals/pkg/logger"
	"cryptosignals/pkg/mail"
	"cryptosignals/utils/security"
	"cryptosignals/utils/uuid"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
)

// ErrAuth 登录或注册失败。对外只返回这一个错误，具体原因只写日志。
var ErrAuth = errors.New("authentication failed, please check your email and password")

type UserService interface {
	SignIn(ctx context.Context, email, password string) (res model.UserLoginRes, err error)
	SignUp(ctx context.Context, req model.UserRegisterReq) (res model.UserLoginRes, err error)
	Logout(ctx context.Context, sessionId string) error
	UserGetInfo(ctx context.Context, userId int64) (res model.UserInfo, err error)
	SetUserRoleAndPlan(ctx context.Context, req model.UserRoleReq) error
	DeleteUser(ctx context.Context, email string) error
	ListUsers(ctx context.Context) (res model.UserListRes, err error)
}

// userService 实现UserService接口
type userService struct {
	ud       dao.UserDao
	sessions session.Store
	verifier *mail.Verifier
	iSrv     *uuid.SnowNode
	now      func() time.Time
}

func NewUserService(ud dao.UserDao, sessions session.Store) *userService {
	return &userService{
		ud:       ud,
		sessions: sessions,
		verifier: mail.NewVerifier(),
		iSrv:     uuid.NewNode(3),
		now:      time.Now,
	}
}

func (u *userService) SignIn(ctx context.Context, email, password string) (res model.UserLoginRes, err error) {
	email, err = u.verifier.VerifierEmail(email)
	if err != nil {
		logger.Infof("登录邮箱格式错误: %v", err)
		return res, ErrAuth
	}
	user, err := u.ud.UserGetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, dao.ErrUserNotFound) {
			logger.Errorf("查询用户失败: %v", err)
		} else {
			logger.Infof("用户不存在: %s", email)
		}
		return res, ErrAuth
	}
	if !security.ValidatePassword(password, user.Password) {
		logger.Infof("密码错误: %s", email)
		return res, ErrAuth
	}
	return u.issue(ctx, user)
}

func (u *userService) SignUp(ctx context.Context, req model.UserRegisterReq) (res model.UserLoginRes, err error) {
	email, err := u.verifier.VerifierEmail(req.Email)
	if err != nil {
		logger.Infof("注册邮箱格式错误: %v", err)
		return res, ErrAuth
	}
	hashed, err := security.PasswordHash(req.Password)
	if err != nil {
		logger.Errorf("密码加密失败: %v", err)
		return res, ErrAuth
	}
	name := strings.TrimSpace(req.Name)
	meta, err := json.Marshal(entity.UserMetadata{DisplayName: name, RedirectTo: conf.AppConfig.ExternalURL})
	if err != nil {
		return res, err
	}
	user := entity.User{
		Id:       u.iSrv.GenSnowID(),
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     consts.RoleUser,
		Metadata: datatypes.JSON(meta),
	}
	if err = u.ud.UserCreate(ctx, &user); err != nil {
		if errors.Is(err, dao.ErrUserExist) {
			logger.Infof("邮箱已注册: %s", email)
		} else {
			logger.Errorf("创建用户失败: %v", err)
		}
		return res, ErrAuth
	}
	return u.issue(ctx, user)
}

// issue 创建会话并签发 token
func (u *userService) issue(ctx context.Context, user entity.User) (res model.UserLoginRes, err error) {
	info := toUserInfo(user)
	ttl := time.Duration(conf.AppConfig.Jwt.JwtTtl) * time.Second
	sid := uuid.GenUUID()
	err = u.sessions.Save(ctx, sid, toSessionUser(info), ttl)
	if err != nil {
		logger.Errorf("保存会话失败: %v", err)
		return res, ErrAuth
	}

	claims := jwt.BuildClaims(u.now().Add(ttl), user.Id, sid)
	token, err := jwt.GenToken(claims, conf.AppConfig.Jwt.Secret)
	if err != nil {
		logger.Errorf("Jwt Token 生成错误: %v", err)
		_ = u.sessions.Delete(ctx, sid)
		return res, ErrAuth
	}
	res.Token = token
	res.Timeout = ttl.Milliseconds()
	res.User = info
	return res, nil
}

func (u *userService) Logout(ctx context.Context, sessionId string) error {
	return u.sessions.Delete(ctx, sessionId)
}

func (u *userService) UserGetInfo(ctx context.Context, userId int64) (res model.UserInfo, err error) {
	user, err := u.ud.UserGetById(ctx, userId)
	if err != nil {
		return res, err
	}
	return toUserInfo(user), nil
}

// SetUserRoleAndPlan 同时刷新该用户所有在线会话，降级立即生效
func (u *userService) SetUserRoleAndPlan(ctx context.Context, req model.UserRoleReq) error {
	plan, err := signal.ParseTier(req.Plan)
	if err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err = u.ud.UserUpdateRoleAndPlan(ctx, email, req.Role, string(plan)); err != nil {
		return err
	}
	user, err := u.ud.UserGetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = u.sessions.UpdateUser(ctx, toSessionUser(toUserInfo(user))); err != nil {
		logger.Errorf("刷新用户会话失败 %s: %v", email, err)
		return fmt.Errorf("refresh sessions of %s: %w", email, err)
	}
	return nil
}

// DeleteUser 删除用户并让其所有会话失效
func (u *userService) DeleteUser(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := u.ud.UserGetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = u.ud.UserDelete(ctx, user.Id); err != nil {
		return err
	}
	if err = u.sessions.DeleteUser(ctx, user.Id); err != nil {
		logger.Errorf("删除用户会话失败 %s: %v", email, err)
		return fmt.Errorf("delete sessions of %s: %w", email, err)
	}
	return nil
}

func (u *userService) ListUsers(ctx context.Context) (res model.UserListRes, err error) {
	users, err := u.ud.UserList(ctx)
	if err != nil {
		return res, err
	}
	res.Users = make([]model.UserInfo, 0, len(users))
	for _, user := range users {
		res.Users = append(res.Users, toUserInfo(user))
	}
	return res, nil
}

func toUserInfo(user entity.User) model.UserInfo {
	plan, err := signal.ParseTier(user.Plan)
	if err != nil {
		// 数据库里的脏数据按未订阅处理
		plan = signal.TierNone
	}
	return model.UserInfo{
		UserId:          user.Id,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		Plan:            plan,
		IsAdministrator: user.Role == consts.RoleAdmin,
	}
}

func toSessionUser(info model.UserInfo) session.User {
	return session.User{
		ID:    info.UserId,
		Email: info.Email,
		Name:  info.Name,
		Role:  info.Role,
		Plan:  info.Plan,
	}
}
