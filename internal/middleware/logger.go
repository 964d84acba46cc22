package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"cryptosignals/internal/consts"
	"cryptosignals/pkg/logger"

	"github.com/gin-gonic/gin"
)

func Logger(c *gin.Context) {
	// 请求前
	t := time.Now()
	reqPath := c.Request.URL.Path
	reqId := c.GetString(consts.RequestId)
	method := c.Request.Method
	ip := c.ClientIP()

	body := ""
	// 登录注册的请求体包含密码，不记录
	if c.Request.Body != nil && !strings.Contains(reqPath, "/auth/") {
		requestBody, err := io.ReadAll(c.Request.Body)
		if err != nil {
			requestBody = []byte{}
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		body = string(requestBody)
	}

	logger.Info("[Request Start]",
		logger.Pair(consts.RequestId, reqId),
		logger.Pair("host", ip),
		logger.Pair("path", reqPath),
		logger.Pair("method", method),
		logger.Pair("body", body))

	c.Next()
	// 请求后
	latency := time.Since(t)
	logger.Info("[Request End]",
		logger.Pair(consts.RequestId, reqId),
		logger.Pair("host", ip),
		logger.Pair("path", reqPath),
		logger.Pair("status", c.Writer.Status()),
		logger.Pair("cost", latency))
}
