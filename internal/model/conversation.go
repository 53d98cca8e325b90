// Package model 包含了应用的数据模型定义。
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ParseRole accepts the provider spellings of the two roles ("assistant" is treated as model).
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "model", "assistant":
		return RoleModel, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// ConversationTurn 代表对话中的一条消息。
type ConversationTurn struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTurn stamps a turn with a fresh id and the current time.
func NewTurn(role Role, text string) ConversationTurn {
	return ConversationTurn{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}
