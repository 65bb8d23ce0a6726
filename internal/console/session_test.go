package console

import (
	"sync"
	"testing"
)

func TestSession_StaleTicketDiscarded(t *testing.T) {
	s := NewSession()
	if s.ID == "" {
		t.Fatal("session has no ID")
	}

	first := s.Navigate("/senders/a/show")
	second := s.Navigate("/senders/b/show")

	if s.Current(first) {
		t.Error("first ticket should be stale after a second navigation")
	}
	if s.Commit(first, func() { t.Error("stale result was shown") }) {
		t.Error("Commit(first) = true, want false")
	}

	shown := false
	if !s.Commit(second, func() { shown = true }) || !shown {
		t.Error("latest ticket should be committed")
	}
	if second.Target != "/senders/b/show" {
		t.Errorf("Target = %q", second.Target)
	}
}

func TestSession_ConcurrentNavigation(t *testing.T) {
	s := NewSession()
	var wg sync.WaitGroup
	tickets := make(chan Ticket, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tickets <- s.Navigate("x")
		}()
	}
	wg.Wait()
	close(tickets)

	current := 0
	for tk := range tickets {
		if s.Current(tk) {
			current++
		}
	}
	if current != 1 {
		t.Errorf("%d tickets current, want exactly 1", current)
	}
}
