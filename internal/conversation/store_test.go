package conversation

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStore_PutGetDelete(t *testing.T) {
	s := NewStore()
	id := uuid.New()
	m := NewManager()
	s.Put(id, m, time.Now().Add(time.Hour))

	got, ok := s.Get(id)
	if !ok || got != m {
		t.Fatal("expected the stored manager")
	}
	if _, ok := s.Get(uuid.New()); ok {
		t.Error("unknown id must miss")
	}
	s.Delete(id)
	if _, ok := s.Get(id); ok || s.Len() != 0 {
		t.Error("deleted session must miss")
	}
}

func TestStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore()
	s.now = func() time.Time { return now }

	old, fresh := uuid.New(), uuid.New()
	s.Put(old, NewManager(), now.Add(time.Minute))
	now = now.Add(2 * time.Minute)
	if _, ok := s.Get(old); ok {
		t.Error("expired session must miss")
	}

	s.Put(uuid.New(), NewManager(), now.Add(time.Second))
	now = now.Add(time.Hour)
	s.Put(fresh, NewManager(), now.Add(time.Hour))
	if s.Len() != 1 {
		t.Errorf("expired sessions should be swept on Put, have %d", s.Len())
	}
	if _, ok := s.Get(fresh); !ok {
		t.Error("fresh session must be found")
	}
}

func TestStore_AttachIsExclusive(t *testing.T) {
	s := NewStore()
	id := uuid.New()
	m := NewManager()
	s.Put(id, m, time.Now().Add(time.Hour))

	got, release, err := s.Attach(id)
	if err != nil || got != m {
		t.Fatalf("attach: %v", err)
	}
	if _, _, err := s.Attach(id); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("second attach: got %v, want ErrSessionBusy", err)
	}
	if _, ok := s.Get(id); !ok {
		t.Error("Get must still work while attached")
	}

	release()
	release()
	_, release2, err := s.Attach(id)
	if err != nil {
		t.Fatalf("attach after release: %v", err)
	}
	release2()

	if _, _, err := s.Attach(uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown id: got %v", err)
	}
}
