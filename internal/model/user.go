package model

import "cryptosignals/internal/signal"

// 用户登陆发起请求的参数
type UserLoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// 用户注册的参数
type UserRegisterReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// 用户登陆成功响应的结构体
type UserLoginRes struct {
	Token   string   `json:"token"`
	Timeout int64    `json:"timeout"` // 毫秒
	User    UserInfo `json:"user"`
}

type UserInfo struct {
	UserId          int64       `json:"user_id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Role            string      `json:"role"`
	Plan            signal.Tier `json:"plan"`
	IsAdministrator bool        `json:"is_administrator"`
}

// 管理员修改用户角色和订阅计划，plan 为空表示取消订阅
type UserRoleReq struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=user admin"`
	Plan  string `json:"plan" binding:"omitempty,oneof=basic pro premium"`
}

type UserListRes struct {
	Users []UserInfo `json:"users"`
}

// 管理员删除用户，不能删除自己
type UserDeleteReq struct {
	Email string `json:"email" binding:"required,email"`
}
