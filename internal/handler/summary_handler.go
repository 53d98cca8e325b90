package handler

import (
	"net/http"

	"ai-workbench/internal/model"
	"ai-workbench/internal/service"
	"ai-workbench/pkg/log"

	"github.com/gin-gonic/gin"
)

// SummaryHandler 负责处理摘要相关的 API 请求。
type SummaryHandler struct {
	summaryService service.SummaryService
}

// NewSummaryHandler 创建一个新的 SummaryHandler 实例。
func NewSummaryHandler(summaryService service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// SummarizeRequest 定义了 JSON 摘要请求的结构。
type SummarizeRequest struct {
	Text   string `json:"text" binding:"required"`
	Length string `json:"length"`
}

// Summarize 接受 JSON {text, length} 或 multipart（text/file + length）。
// 模型失败时仍返回 200，摘要为固定的兜底文案且 fallback 为 true。
func (h *SummaryHandler) Summarize(c *gin.Context) {
	var (
		input     model.Input
		source    string
		lengthRaw string
	)
	if isMultipart(c) {
		in, closeInput, err := formInput(c, "file", "text")
		if err != nil {
			c.JSON(inputErrorStatus(err), gin.H{"code": inputErrorStatus(err), "message": err.Error(), "data": nil})
			return
		}
		defer closeInput()
		input = in
		if text, ok := in.(model.Text); ok {
			source = string(text)
		}
		lengthRaw = c.PostForm("length")
	} else {
		var req SummarizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的请求负载", "data": nil})
			return
		}
		input = model.Text(req.Text)
		source = req.Text
		lengthRaw = req.Length
	}

	length, err := model.ParseSummaryLength(lengthRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error(), "data": nil})
		return
	}

	summary := h.summaryService.Summarize(c.Request.Context(), input, length)
	result := model.NewSummaryResult(source, summary, service.IsSummaryFallback(summary))
	log.Infof("摘要完成: input=%s, length=%s, words=%d, fallback=%t", model.InputKind(input), length, result.WordCount, result.Fallback)

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": result})
}
