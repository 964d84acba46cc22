package ecode

// 业务错误码，0 表示成功
const (
	Success = 0

	Unknown = iota + 10000
	ValidateErr
	NotFoundErr
	RequireAuthErr
	ForbiddenErr
	UserLoginErr
	UserExistErr
	TooManyRequestsErr
)

var messages = map[int]string{
	Success:            "success",
	Unknown:            "unknown error",
	ValidateErr:        "invalid request",
	NotFoundErr:        "not found",
	RequireAuthErr:     "authentication required",
	ForbiddenErr:       "permission denied",
	UserLoginErr:       "login failed",
	UserExistErr:       "user already exists",
	TooManyRequestsErr: "too many requests",
}

// Text 返回错误码的默认描述
func Text(code int) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[Unknown]
}
