package service

import (
	"sync"

	"github.com/electrokart/electrokart_api/internal/models"
)

// HistoryWindow is how many entries a history read returns.
const HistoryWindow = 10

// ConversationStore keeps chat turns per user for the process lifetime.
// Nothing is evicted except by Clear or ClearAll.
// TODO: cap entries per user once a retention period is agreed on.
type ConversationStore struct {
	mu      sync.Mutex
	entries map[string][]models.ConversationEntry
}

// NewConversationStore creates an empty ConversationStore.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{entries: make(map[string][]models.ConversationEntry)}
}

// Append records a turn under entry.UserID.
func (s *ConversationStore) Append(entry models.ConversationEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.UserID] = append(s.entries[entry.UserID], entry)
}

// Recent returns up to n of the user's latest turns, oldest first.
func (s *ConversationStore) Recent(userID string, n int) []models.ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.entries[userID]
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]models.ConversationEntry, len(history))
	copy(out, history)
	return out
}

// Clear forgets one user's turns. Clearing an unknown user is a no-op.
func (s *ConversationStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// ClearAll forgets every user's turns and returns how many users had history.
func (s *ConversationStore) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = make(map[string][]models.ConversationEntry)
	return n
}
