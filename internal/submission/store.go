// Package submission keeps material awaiting moderation, keyed by the
// message ID of the user's original message.
package submission

import "sync"

// Submission is the material a user sent for moderation.
type Submission struct {
	ChatID       int64
	UserID       int64
	Text         string
	PhotoIDs     []string
	MediaGroupID string
}

// HasPhotos reports whether the submission carries at least one photo.
func (s Submission) HasPhotos() bool {
	return len(s.PhotoIDs) > 0
}

// Store is an in-memory, concurrency-safe map of message ID to submission.
type Store struct {
	mu        sync.RWMutex
	byMessage map[int]Submission
}

// NewStore creates an empty submission store.
func NewStore() *Store {
	return &Store{byMessage: make(map[int]Submission)}
}

// Save records the submission under messageID, overwriting any previous
// entry with the same key.
func (s *Store) Save(messageID int, sub Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byMessage[messageID] = sub
}

// TryGet returns the submission stored under messageID, if any.
func (s *Store) TryGet(messageID int) (Submission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.byMessage[messageID]
	return sub, ok
}

// Remove deletes the submission stored under messageID. Removing a
// missing key is a no-op.
func (s *Store) Remove(messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byMessage, messageID)
}
