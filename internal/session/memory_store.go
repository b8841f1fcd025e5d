package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore хранит сессии в памяти процесса. После рестарта незавершённые заявки теряются.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore создаёт хранилище. ttl <= 0 отключает истечение неактивных сессий.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get возвращает сессию пользователя. Истёкшая сессия считается отсутствующей.
func (s *MemoryStore) Get(_ context.Context, userID int64) (Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok || s.expired(sess) {
		return Session{}, false, nil
	}
	return sess, true, nil
}

// Put перезаписывает сессию пользователя.
func (s *MemoryStore) Put(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.UpdatedAt = s.now()
	s.sessions[sess.UserID] = sess
	return nil
}

// Clear удаляет сессию пользователя.
func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}

// Len возвращает количество хранимых сессий, включая ещё не вычищенные истёкшие.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Run периодически удаляет истёкшие сессии, пока не отменён ctx.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup удаляет истёкшие сессии и возвращает их количество.
func (s *MemoryStore) cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, userID)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) expired(sess Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.UpdatedAt) > s.ttl
}
