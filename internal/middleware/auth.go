// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"ai-workbench/pkg/log"
	"ai-workbench/pkg/token"

	"github.com/gin-gonic/gin"
)

// ContextSessionID 是会话 ID 在 Gin 上下文中的键。
const ContextSessionID = "sessionID"

// SessionAuth 创建一个校验咨询会话令牌的 Gin 中间件。
// 令牌取自路径参数 :token（WebSocket 无法自定义请求头），否则取 Authorization: Bearer <token>。
// 校验通过后会话 ID（uuid.UUID）存入上下文。
func SessionAuth(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Param("token")
		if tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "请求未包含会话令牌", "data": nil})
				return
			}
			tokenString = strings.TrimPrefix(authHeader, bearerPrefix)
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			log.Warnf("会话令牌校验失败: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效或已过期的 token", "data": nil})
			return
		}
		// VerifyToken 已保证 Subject 是合法的 uuid
		sessionID, _ := claims.SessionID()
		c.Set(ContextSessionID, sessionID)
		c.Set("claims", claims)
		c.Next()
	}
}
