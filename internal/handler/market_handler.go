package handler

import (
	"net/http"
	"strconv"

	"ai-workbench/internal/service"

	"github.com/gin-gonic/gin"
)

// MarketHandler 负责行情页面的 API。
type MarketHandler struct {
	marketService service.MarketService
}

// NewMarketHandler 创建一个新的 MarketHandler 实例。
func NewMarketHandler(marketService service.MarketService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

// SentimentRequest 定义了情绪分析请求体。
type SentimentRequest struct {
	Headline string `json:"headline" binding:"required"`
}

// AnalyzeSentiment 分析一条新闻标题的情绪。
func (h *MarketHandler) AnalyzeSentiment(c *gin.Context) {
	var req SentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
		return
	}
	analysis := h.marketService.AnalyzeSentiment(c.Request.Context(), req.Headline)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"analysis": analysis}})
}

// Series 返回演示用的实际/预测价格序列。
func (h *MarketHandler) Series(c *gin.Context) {
	points := 0
	if raw := c.Query("points"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的 points 参数", "data": nil})
			return
		}
		points = n
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": h.marketService.Series(points)})
}
