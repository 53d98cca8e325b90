package conversation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"ai-workbench/internal/model"

	"github.com/google/uuid"
)

func TestManager_HistoryViewKeepsAppendOrder(t *testing.T) {
	for _, n := range []int{0, 1, 2, 17, 200} {
		m := NewManager()
		for i := 0; i < n; i++ {
			role := model.RoleUser
			if i%2 == 1 {
				role = model.RoleModel
			}
			m.Append(model.NewTurn(role, fmt.Sprintf("turn-%d", i)))
		}
		view := m.HistoryView()
		if len(view) != n || m.Len() != n {
			t.Fatalf("n=%d: got %d turns (Len %d)", n, len(view), m.Len())
		}
		for i, turn := range view {
			if turn.Text != fmt.Sprintf("turn-%d", i) {
				t.Fatalf("n=%d: turn %d out of order: %q", n, i, turn.Text)
			}
		}
	}
}

func TestManager_NoDeduplication(t *testing.T) {
	m := NewManager()
	same := model.NewTurn(model.RoleUser, "again")
	m.Append(same)
	m.Append(same)
	if m.Len() != 2 {
		t.Fatalf("duplicates must be kept, got %d turns", m.Len())
	}
}

func TestManager_FillsMissingIDAndTime(t *testing.T) {
	m := NewManager(model.ConversationTurn{Role: model.RoleModel, Text: "hello"})
	turn := m.HistoryView()[0]
	if turn.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if turn.CreatedAt.IsZero() || time.Since(turn.CreatedAt) > time.Minute {
		t.Errorf("unexpected timestamp %v", turn.CreatedAt)
	}
}

func TestManager_HistoryViewIsACopy(t *testing.T) {
	m := NewManager(model.NewTurn(model.RoleUser, "original"))
	view := m.HistoryView()
	view[0].Text = "mutated"
	if m.HistoryView()[0].Text != "original" {
		t.Error("HistoryView must not expose internal storage")
	}
}

func TestManager_ProviderHistory(t *testing.T) {
	m := NewManager(
		model.NewTurn(model.RoleModel, "greeting"),
		model.NewTurn(model.RoleUser, "I like math and puzzles"),
		model.NewTurn(model.RoleModel, "Try data science"),
	)
	h := m.ProviderHistory()
	if len(h) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(h))
	}
	wantRoles := []model.Role{model.RoleModel, model.RoleUser, model.RoleModel}
	for i, c := range h {
		if c.Role != wantRoles[i] {
			t.Errorf("content %d: role %q want %q", i, c.Role, wantRoles[i])
		}
		if len(c.Parts) != 1 {
			t.Fatalf("content %d: expected one text part, got %d", i, len(c.Parts))
		}
	}
	if h[1].Parts[0].(model.TextPart).Content != "I like math and puzzles" {
		t.Errorf("unexpected text %+v", h[1].Parts[0])
	}
}

func TestManager_ConcurrentReadsDuringAppend(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			m.Append(model.NewTurn(model.RoleUser, "x"))
		}
	}()
	for i := 0; i < 100; i++ {
		view := m.HistoryView()
		if len(view) > 500 {
			t.Fatalf("impossible length %d", len(view))
		}
		_ = m.ProviderHistory()
	}
	wg.Wait()
	if m.Len() != 500 {
		t.Fatalf("expected 500 turns, got %d", m.Len())
	}
}
