package middleware

import (
	"errors"
	"fmt"
	"strings"

	"cryptosignals/conf"
	"cryptosignals/internal/consts"
	"cryptosignals/internal/session"
	"cryptosignals/pkg/jwt"
	"cryptosignals/pkg/logger"
	"cryptosignals/pkg/response"

	"github.com/gin-gonic/gin"
)

// 请求头的形式为 Authorization: Bearer token
const authorizationHeader = "Authorization"

// AuthToken 鉴权，验证 token 并加载服务端会话。
// 等级和角色只从会话读取，客户端无法伪造。
func AuthToken(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := getJwtFromHeader(c)
		if err != nil {
			response.RequireAuthErr(c, err)
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(tokenStr, conf.AppConfig.Jwt.Secret)
		if err != nil {
			response.RequireAuthErr(c, err)
			c.Abort()
			return
		}
		user, err := sessions.Load(c, claims.SessionId)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				logger.Errorf("加载会话失败: %v", err)
			}
			response.RequireAuthErr(c, fmt.Errorf("session expired"))
			c.Abort()
			return
		}
		if user.ID != claims.UserId {
			response.RequireAuthErr(c, fmt.Errorf("session mismatch"))
			c.Abort()
			return
		}

		session.Attach(c, claims.SessionId, user)
		c.Set(consts.JWTTokenCtx, tokenStr)
		c.Next()
	}
}

// RequireAdmin 只允许管理员访问，需放在 AuthToken 之后
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := session.FromContext(c)
		if !ok || !user.IsAdmin() {
			response.Forbidden(c, "admin only")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePlan 没有订阅计划的用户不能查看信号，管理员除外
func RequirePlan() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := session.FromContext(c)
		if !ok || !user.ViewTier().Valid() {
			response.Forbidden(c, "a subscription plan is required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func getJwtFromHeader(c *gin.Context) (string, error) {
	aHeader := c.Request.Header.Get(authorizationHeader)
	if len(aHeader) == 0 {
		return "", fmt.Errorf("token is empty")
	}
	strs := strings.SplitN(aHeader, " ", 2)
	if len(strs) != 2 || strs[0] != "Bearer" {
		return "", fmt.Errorf("token 不符合规则")
	}
	return strs[1], nil
}
