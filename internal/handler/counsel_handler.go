package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ai-workbench/internal/conversation"
	"ai-workbench/internal/middleware"
	"ai-workbench/internal/model"
	"ai-workbench/internal/service"
	"ai-workbench/pkg/llm"
	"ai-workbench/pkg/log"
	"ai-workbench/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

// 客户端帧类型
const (
	frameMessage = "message"
	frameHistory = "history"
	frameReply   = "reply"
	frameError   = "error"
)

type clientFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type historyFrame struct {
	Type  string                   `json:"type"`
	Turns []model.ConversationTurn `json:"turns"`
}

type replyFrame struct {
	Type     string                  `json:"type"`
	Text     string                  `json:"text"`
	Fallback bool                    `json:"fallback"`
	Turn     *model.ConversationTurn `json:"turn"`
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CounselHandler 负责咨询会话的创建和 WebSocket 对话。
type CounselHandler struct {
	counselService service.CounselService
	sessions       *conversation.Store
	jwtManager     *token.JWTManager
}

// NewCounselHandler 创建一个新的 CounselHandler。
func NewCounselHandler(counselService service.CounselService, sessions *conversation.Store, jwtManager *token.JWTManager) *CounselHandler {
	return &CounselHandler{
		counselService: counselService,
		sessions:       sessions,
		jwtManager:     jwtManager,
	}
}

// CreateSession 开启一个新的咨询会话，返回 WebSocket 令牌和带问候语的历史。
func (h *CounselHandler) CreateSession(c *gin.Context) {
	sessionID := uuid.New()
	tokenString, expiresAt, err := h.jwtManager.GenerateSessionToken(sessionID)
	if err != nil {
		log.Errorf("生成会话令牌失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "服务器内部错误", "data": nil})
		return
	}
	conv := h.counselService.NewSession()
	h.sessions.Put(sessionID, conv, expiresAt)
	log.Infow("[CounselHandler] 会话已创建", "sessionId", sessionID, "expiresAt", expiresAt)

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": model.CounselSession{
		Token:     tokenString,
		SessionID: sessionID,
		ExpiresAt: model.LocalTime(expiresAt),
		Greeting:  service.CounselGreeting,
		History:   conv.HistoryView(),
	}})
}

// EndSession 删除当前令牌对应的会话。需要 middleware.SessionAuth。
func (h *CounselHandler) EndSession(c *gin.Context) {
	sessionID := c.MustGet(middleware.ContextSessionID).(uuid.UUID)
	h.sessions.Delete(sessionID)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}

// Handle 处理一个咨询 WebSocket 连接。
// 连接建立后先推送一次历史；之后每条用户消息得到一个 reply 帧。
// 兜底回复不会写入历史。同一会话同时只允许一个连接（读循环是唯一写者）。
// 需要 middleware.SessionAuth。
func (h *CounselHandler) Handle(c *gin.Context) {
	sessionID := c.MustGet(middleware.ContextSessionID).(uuid.UUID)
	conv, release, err := h.sessions.Attach(sessionID)
	if err != nil {
		status := http.StatusNotFound
		if errors.Is(err, conversation.ErrSessionBusy) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"code": status, "message": err.Error(), "data": nil})
		return
	}
	defer release()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，会话: %s", sessionID)
	if err := conn.WriteJSON(historyFrame{Type: frameHistory, Turns: conv.HistoryView()}); err != nil {
		log.Warnf("发送历史失败: %v", err)
		return
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Infof("WebSocket 连接关闭，会话: %s, err: %v", sessionID, err)
			return
		}

		frame := parseClientFrame(message)
		var out any
		switch frame.Type {
		case frameHistory:
			out = historyFrame{Type: frameHistory, Turns: conv.HistoryView()}
		case frameMessage:
			if frame.Text == "" {
				out = errorFrame{Type: frameError, Message: "消息不能为空"}
				break
			}
			out = h.reply(c, conv, frame.Text)
		default:
			out = errorFrame{Type: frameError, Message: "未知的消息类型: " + frame.Type}
		}

		if err := conn.WriteJSON(out); err != nil {
			log.Warnf("写入 WebSocket 消息失败: %v", err)
			return
		}
	}
}

// reply 基于当前历史请求建议。用户消息总是写入历史，兜底回复不写入；
// 紧接在未获回复的同一条用户消息之后的重试会复用那一轮，不会重复记录。
func (h *CounselHandler) reply(c *gin.Context, conv *conversation.Manager, text string) replyFrame {
	turns := conv.HistoryView()
	prior := len(turns)
	retry := prior > 0 && turns[prior-1].Role == model.RoleUser && turns[prior-1].Text == text
	if retry {
		prior--
	}

	answer := h.counselService.Advise(c.Request.Context(), priorTurns{conv: conv, n: prior}, text)
	if !retry {
		conv.Append(model.NewTurn(model.RoleUser, text))
	}
	if service.IsAdviceFallback(answer) {
		return replyFrame{Type: frameReply, Text: answer, Fallback: true}
	}
	turn := model.NewTurn(model.RoleModel, answer)
	conv.Append(turn)
	return replyFrame{Type: frameReply, Text: answer, Turn: &turn}
}

// priorTurns 是模型看到的历史：会话中前 n 轮。
type priorTurns struct {
	conv *conversation.Manager
	n    int
}

func (p priorTurns) ProviderHistory() []llm.Content {
	history := p.conv.ProviderHistory()
	if p.n < len(history) {
		history = history[:p.n]
	}
	return history
}

// parseClientFrame 接受 JSON 帧，其他内容按纯文本消息处理。
func parseClientFrame(message []byte) clientFrame {
	trimmed := strings.TrimSpace(string(message))
	if strings.HasPrefix(trimmed, "{") {
		var f clientFrame
		if err := json.Unmarshal([]byte(trimmed), &f); err == nil && f.Type != "" {
			f.Text = strings.TrimSpace(f.Text)
			return f
		}
	}
	return clientFrame{Type: frameMessage, Text: trimmed}
}
