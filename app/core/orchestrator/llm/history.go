package llm

import "sync"

// History keeps a bounded per-session window of chat turns. Old turns
// fall off the front once the limit is reached.
type History struct {
	mu       sync.Mutex
	limit    int
	sessions map[string][]ChatMessage
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 10
	}
	return &History{
		limit:    limit,
		sessions: make(map[string][]ChatMessage),
	}
}

func (h *History) Append(sessionID, role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := append(h.sessions[sessionID], ChatMessage{Role: role, Content: content})
	if len(msgs) > h.limit {
		msgs = msgs[len(msgs)-h.limit:]
	}
	h.sessions[sessionID] = msgs
}

// Get returns a copy of the session window.
func (h *History) Get(sessionID string) []ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.sessions[sessionID]
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

func (h *History) Clear(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
}
