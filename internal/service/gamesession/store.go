package gamesession

import (
	"fmt"
	"log"
	"sync"
	"time"

	apperrors "github.com/yourusername/trafikk-api/internal/pkg/errors"
)

// SessionStore — in-memory хранилище активных сессий, ключ — session_id.
// RWMutex защищает саму мапу; мутации состояния конкретной сессии
// сериализуются ее собственным SessionState.Mu, поэтому действия по разным
// сессиям друг друга не блокируют.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

// NewSessionStore создает пустое хранилище сессий
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*SessionState),
	}
}

// Put регистрирует новую сессию. Идентификатор должен быть уникален
// среди активных сессий; коллизия — конфликт состояния.
func (st *SessionStore) Put(sess *SessionState) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.sessions[sess.ID]; exists {
		return fmt.Errorf("%w: session %s already active", apperrors.ErrConflict, sess.ID)
	}
	st.sessions[sess.ID] = sess
	return nil
}

// Get возвращает активную сессию по идентификатору.
// Завершенные и вычищенные сессии отсюда уже удалены, поэтому любой
// последующий вызов по их идентификатору дает ErrSessionNotFound.
func (st *SessionStore) Get(id string) (*SessionState, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	return sess, nil
}

// Remove изымает сессию из хранилища и возвращает ее.
// После изъятия идентификатор становится невалидным для обработки действий.
func (st *SessionStore) Remove(id string) (*SessionState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, id)
	}
	delete(st.sessions, id)
	return sess, nil
}

// Len возвращает количество активных сессий
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// CleanupExpired удаляет все сессии старше maxAge независимо от активности
// и возвращает количество удаленных. Операция идемпотентна и запускается
// вызывающей стороной (периодический свип на границе приложения).
func (st *SessionStore) CleanupExpired(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if sess.StartedAt.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[SessionStore] Очистка истекших сессий: удалено %d, осталось %d", removed, len(st.sessions))
	}
	return removed
}
