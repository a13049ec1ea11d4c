// Package session tracks per-user conversation state.
package session

import "sync"

// State identifies what kind of input the bot expects from a user next.
type State string

const (
	// StateIdle means no submission flow is active for the user.
	StateIdle State = ""
	// StateWaitingForFindQuery means the next message is a search request.
	StateWaitingForFindQuery State = "waiting_for_find_query"
	// StateWaitingForAdContent means the next message is ad material.
	StateWaitingForAdContent State = "waiting_for_ad_content"
	// StateWaitingForAdvice means the next message is an improvement idea.
	StateWaitingForAdvice State = "waiting_for_advice"
)

// IsSubmission reports whether the state collects material for moderation.
func (s State) IsSubmission() bool {
	return s == StateWaitingForFindQuery || s == StateWaitingForAdContent
}

// Store is an in-memory, concurrency-safe map of user ID to state.
// Idle users are not stored; absence means idle.
type Store struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{states: make(map[int64]State)}
}

// Get returns the user's current state, StateIdle if none is recorded.
func (s *Store) Get(userID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[userID]
}

// Set records the user's state. Setting StateIdle removes the entry.
func (s *Store) Set(userID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == StateIdle {
		delete(s.states, userID)
		return
	}
	s.states[userID] = state
}

// Reset returns the user to StateIdle.
func (s *Store) Reset(userID int64) {
	s.Set(userID, StateIdle)
}
