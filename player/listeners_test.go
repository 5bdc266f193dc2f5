package player

import "testing"

func TestListenersSubscribeAndUnsubscribe(t *testing.T) {
	var s Listeners
	var got []Event

	unsubscribe := s.Subscribe(func(ev Event) { got = append(got, ev) })
	s.Emit(Event{Kind: EventPosition})
	if len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}

	unsubscribe()
	unsubscribe()
	s.Emit(Event{Kind: EventEnded})
	if len(got) != 1 {
		t.Errorf("Detached listener should not receive events")
	}
	if s.Len() != 0 {
		t.Errorf("Expected no listeners, got %d", s.Len())
	}
}

func TestListenersEmitAllowsResubscribe(t *testing.T) {
	var s Listeners
	calls := 0

	var unsubscribe func()
	unsubscribe = s.Subscribe(func(ev Event) {
		calls++
		unsubscribe()
		s.Subscribe(func(Event) {})
	})

	s.Emit(Event{Kind: EventDuration})
	if calls != 1 {
		t.Fatalf("Expected one call, got %d", calls)
	}
	if s.Len() != 1 {
		t.Errorf("Expected the replacement listener to be attached, got %d", s.Len())
	}
}

func TestEventKindString(t *testing.T) {
	if EventEnded.String() != "ended" || EventPosition.String() != "position" {
		t.Errorf("Unexpected event kind names")
	}
}

func TestFanoutCarriesAnyType(t *testing.T) {
	var s Fanout[string]
	var got []string
	unsubscribe := s.Subscribe(func(v string) { got = append(got, v) })
	s.Emit("track")
	unsubscribe()
	s.Emit("status")

	if len(got) != 1 || got[0] != "track" || s.Len() != 0 {
		t.Errorf("Unexpected deliveries %v with %d subscribers left", got, s.Len())
	}
}
