package model

import "github.com/google/uuid"

// CounselSession is returned when a counselling session is opened. Token
// authorizes the WebSocket at /counsel/:token.
type CounselSession struct {
	Token     string             `json:"token"`
	SessionID uuid.UUID          `json:"sessionId"`
	ExpiresAt LocalTime          `json:"expiresAt"`
	Greeting  string             `json:"greeting"`
	History   []ConversationTurn `json:"history"`
}
