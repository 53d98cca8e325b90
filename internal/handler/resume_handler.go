package handler

import (
	"net/http"
	"strings"

	"ai-workbench/internal/service"

	"github.com/gin-gonic/gin"
)

// ResumeHandler 负责处理简历优化请求。
type ResumeHandler struct {
	resumeService service.ResumeService
}

// NewResumeHandler 创建一个新的 ResumeHandler 实例。
func NewResumeHandler(resumeService service.ResumeService) *ResumeHandler {
	return &ResumeHandler{resumeService: resumeService}
}

// Optimize 处理 multipart 请求：jobDescription，以及两份简历（softwareFile|softwareText、coreFile|coreText）。
// 同时提供文件和文本时以文件为准。
func (h *ResumeHandler) Optimize(c *gin.Context) {
	if !isMultipart(c) {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "需要 multipart/form-data 请求", "data": nil})
		return
	}
	jobDescription := strings.TrimSpace(c.PostForm("jobDescription"))
	if jobDescription == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "缺少 jobDescription", "data": nil})
		return
	}

	software, closeSoftware, err := formInput(c, "softwareFile", "softwareText")
	if err != nil {
		c.JSON(inputErrorStatus(err), gin.H{"code": inputErrorStatus(err), "message": err.Error(), "data": nil})
		return
	}
	defer closeSoftware()
	core, closeCore, err := formInput(c, "coreFile", "coreText")
	if err != nil {
		c.JSON(inputErrorStatus(err), gin.H{"code": inputErrorStatus(err), "message": err.Error(), "data": nil})
		return
	}
	defer closeCore()

	result := h.resumeService.Optimize(c.Request.Context(), jobDescription, software, core)
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "unable to optimize résumé, please try again", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": result})
}
