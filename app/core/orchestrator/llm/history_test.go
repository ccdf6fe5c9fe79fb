package llm

import (
	"fmt"
	"testing"
)

func TestHistoryWindow(t *testing.T) {
	h := NewHistory(4)
	for i := 0; i < 10; i++ {
		h.Append("s1", RoleUser, fmt.Sprintf("msg %d", i))
	}
	msgs := h.Get("s1")
	if len(msgs) != 4 {
		t.Fatalf("expected window of 4, got %d", len(msgs))
	}
	if msgs[0].Content != "msg 6" || msgs[3].Content != "msg 9" {
		t.Fatalf("expected oldest turns dropped, got %+v", msgs)
	}
}

func TestHistorySessionsIsolated(t *testing.T) {
	h := NewHistory(10)
	h.Append("s1", RoleUser, "hello")
	h.Append("s2", RoleUser, "other")
	if len(h.Get("s1")) != 1 || len(h.Get("s2")) != 1 {
		t.Fatal("sessions must be independent")
	}
	h.Clear("s1")
	if len(h.Get("s1")) != 0 {
		t.Fatal("expected cleared session to be empty")
	}
	if len(h.Get("s2")) != 1 {
		t.Fatal("clearing one session must not touch another")
	}
}

func TestHistoryGetReturnsCopy(t *testing.T) {
	h := NewHistory(10)
	h.Append("s1", RoleUser, "original")
	msgs := h.Get("s1")
	msgs[0].Content = "mutated"
	if h.Get("s1")[0].Content != "original" {
		t.Fatal("Get must return a copy")
	}
}
