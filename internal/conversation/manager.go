// Package conversation keeps the ordered turn log of one chat session.
package conversation

import (
	"sync"
	"time"

	"ai-workbench/internal/model"
	"ai-workbench/pkg/llm"

	"github.com/google/uuid"
)

// Manager is an append-only log of turns. It never reorders, deduplicates
// or truncates. One instance belongs to one session and has a single writer;
// reads may come from any goroutine.
type Manager struct {
	mu    sync.RWMutex
	turns []model.ConversationTurn
}

// NewManager creates a log, optionally seeded with opening turns (e.g. a greeting).
func NewManager(seed ...model.ConversationTurn) *Manager {
	m := &Manager{}
	for _, t := range seed {
		m.Append(t)
	}
	return m
}

// Append adds turn at the end. A zero ID or CreatedAt is filled in.
func (m *Manager) Append(turn model.ConversationTurn) {
	if turn.ID == uuid.Nil {
		turn.ID = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	m.mu.Lock()
	m.turns = append(m.turns, turn)
	m.mu.Unlock()
}

// HistoryView returns a copy of all turns in insertion order.
func (m *Manager) HistoryView() []model.ConversationTurn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.ConversationTurn, len(m.turns))
	copy(out, m.turns)
	return out
}

// ProviderHistory maps every turn 1:1 to the provider's {role, parts} shape.
func (m *Manager) ProviderHistory() []llm.Content {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]llm.Content, 0, len(m.turns))
	for _, t := range m.turns {
		out = append(out, llm.Content{
			Role:  t.Role,
			Parts: []model.Part{model.TextPart{Content: t.Text}},
		})
	}
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}
