package session

import (
	"sync"
	"testing"
)

func TestStore_SnapshotSetClear(t *testing.T) {
	s := NewStore()

	if s.Snapshot().Active() {
		t.Fatal("fresh store must be inactive")
	}

	s.Set(Session{AccessToken: "tok", User: User{ID: "u1", UserName: "alice"}})

	snap := s.Snapshot()
	if !snap.Active() {
		t.Fatal("expected active session")
	}
	if snap.User.UserName != "alice" {
		t.Fatalf("unexpected user: %v", snap.User)
	}

	s.Clear()
	if s.Snapshot().Active() {
		t.Fatal("expected inactive session after Clear")
	}
}

func TestStore_SubscribeNotified(t *testing.T) {
	s := NewStore()

	var got []Session
	s.Subscribe(func(sess Session) {
		got = append(got, sess)
	})

	s.Set(Session{AccessToken: "tok"})
	s.Clear()

	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if !got[0].Active() || got[1].Active() {
		t.Fatalf("unexpected notification order: %v", got)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Set(Session{AccessToken: "tok"})
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
}
