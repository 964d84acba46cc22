package middleware

import (
	"cryptosignals/internal/handler/ping"

	"github.com/gin-gonic/gin"
)

// Middleware 全局中间件和健康检查，作为第一个 Router 加载
type Middleware struct{}

func NewMiddleware() *Middleware {
	return &Middleware{}
}

func (m *Middleware) Load(g *gin.Engine) {
	g.Use(gin.Recovery())
	g.Use(RequestId())
	g.Use(NoCache())
	g.Use(Options())
	g.Use(Secure())
	g.Use(Logger)

	g.GET("/ping", ping.Ping())
}
