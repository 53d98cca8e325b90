package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health 返回存活状态和当前使用的模型提供方。
func Health(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "provider": provider})
	}
}
