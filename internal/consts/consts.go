package consts

import "time"

const (
	// RequestId 请求id名称
	RequestId   = "request_id"
	UserID      = "user_id"
	SessionID   = "session_id"
	SessionUser = "session_user"
	JWTTokenCtx = "token_ctx"

	// 会话在 redis 中的 key 前缀
	SessionPrefix      = "Session_User:"
	// 用户 id -> 会话 id 集合
	SessionIndexPrefix = "Session_Index:"

	// 防重复提交的窗口
	AntiDuplicateWindow = 2 * time.Second
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
