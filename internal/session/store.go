package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store owns the mapping from user identity to active session. At most one
// session exists per user at any time; sessions live only in process
// memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the active session for a user, or nil.
func (s *Store) Get(userID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID]
}

// Create registers a fresh session at the first stage, replacing any
// existing one for the user.
func (s *Store) Create(userID, channelID string) *Session {
	sess := &Session{
		UserID:    userID,
		ChannelID: channelID,
		Stage:     StageBotType,
		UpdatedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
	return sess
}

// Delete removes a user's session. Removing an absent session is a no-op.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Contains reports whether the given session is still the registered one
// for its user. A handler that was already waiting on the session lock
// uses this to detect that the session was cancelled meanwhile.
func (s *Store) Contains(sess *Session) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sess.UserID] == sess
}

// Touch refreshes a session's idle timestamp.
func (s *Store) Touch(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		sess.UpdatedAt = time.Now()
	}
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// expire removes and returns all sessions idle longer than ttl.
func (s *Store) expire(ttl time.Duration) []*Session {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*Session
	for userID, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, userID)
		}
	}
	return expired
}

// StartSweeper launches a goroutine that periodically destroys sessions
// idle longer than ttl, calling onExpire for each so the user can be
// notified. It stops when ctx is cancelled.
func (s *Store) StartSweeper(ctx context.Context, ttl, interval time.Duration, onExpire func(*Session)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, sess := range s.expire(ttl) {
					slog.Info("Session expired", "user_id", sess.UserID, "stage", sess.Stage)
					if onExpire != nil {
						onExpire(sess)
					}
				}
			}
		}
	}()
}
