// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ai-workbench/internal/model"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes 单个上传文件的大小上限。
const maxUploadBytes = 20 << 20

var (
	errMissingInput = errors.New("missing input")
	errFileTooLarge = errors.New("file too large")
)

// formInput 从 multipart 表单中读取文件（优先）或文本字段。
// 返回的 closer 必须在输入被消费后调用。
func formInput(c *gin.Context, fileField, textField string) (model.Input, func(), error) {
	if fh, err := c.FormFile(fileField); err == nil {
		if fh.Size > maxUploadBytes {
			return nil, nil, fmt.Errorf("%w: %s (%d bytes)", errFileTooLarge, fh.Filename, fh.Size)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("打开上传文件失败: %w", err)
		}
		mimeType := fh.Header.Get("Content-Type")
		// 通用二进制类型交给编码器嗅探
		if mimeType == "application/octet-stream" {
			mimeType = ""
		}
		return model.Blob{Name: fh.Filename, MIMEType: mimeType, Reader: f}, func() { _ = f.Close() }, nil
	}
	if text := strings.TrimSpace(c.PostForm(textField)); text != "" {
		return model.Text(text), func() {}, nil
	}
	return nil, nil, fmt.Errorf("%w: provide %s or %s", errMissingInput, fileField, textField)
}

// inputErrorStatus 将表单读取错误映射到 HTTP 状态码。
func inputErrorStatus(err error) int {
	if errors.Is(err, errFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}
