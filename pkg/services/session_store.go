package services

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hintlane/clarify-engine/pkg/apperrors"
	"github.com/hintlane/clarify-engine/pkg/models"
)

// SessionStore is the in-memory session map. Eviction is an explicit policy:
// idle sessions past the TTL are dropped, and the map is bounded to
// maxEntries with oldest-updated sessions evicted first. Eviction runs lazily
// on store access; there is no background sweeper.
type SessionStore struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	ttl        time.Duration
	maxEntries int
	logger     *zap.Logger
}

// NewSessionStore creates a bounded session store.
func NewSessionStore(ttl time.Duration, maxEntries int, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		sessions:   make(map[string]*Session),
		ttl:        ttl,
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// GetOrCreate returns the session for the response's id, seeding and storing
// a new one when none exists. The lookup and insert happen in one critical
// section so concurrent callers with the same id converge on one session;
// exactly one of them observes created == true.
func (st *SessionStore) GetOrCreate(response models.ClarificationResponse, contextLookup map[string][]string) (session *Session, created bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.evictLocked(time.Now().UTC())

	if response.SessionID != "" {
		if existing, ok := st.sessions[response.SessionID]; ok {
			return existing, false
		}
	}
	session = newSession(response, contextLookup)
	st.sessions[session.SessionID] = session
	return session, true
}

// Get returns the session for id, or nil when unknown or expired.
func (st *SessionStore) Get(sessionID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.evictLocked(time.Now().UTC())
	return st.sessions[sessionID]
}

// Ensure returns the session for id or ErrSessionNotFound. Sessions are
// never auto-created on lookup.
func (st *SessionStore) Ensure(sessionID string) (*Session, error) {
	session := st.Get(sessionID)
	if session == nil {
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}

// Remove drops a session. Removing an unknown id is a no-op.
func (st *SessionStore) Remove(sessionID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, sessionID)
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// evictLocked applies the TTL and size bounds. Caller holds st.mu. Sessions
// are aged via their atomic last-touched stamp; UpdatedAt stays guarded by
// the per-session mutex and is never read here.
func (st *SessionStore) evictLocked(now time.Time) {
	if st.ttl > 0 {
		cutoff := now.Add(-st.ttl).UnixNano()
		for id, session := range st.sessions {
			if session.LastTouched() < cutoff {
				delete(st.sessions, id)
				st.logger.Debug("evicted expired clarification session", zap.String("session_id", id))
			}
		}
	}

	if st.maxEntries <= 0 || len(st.sessions) < st.maxEntries {
		return
	}

	// Over the bound: drop oldest-touched sessions until one slot is free.
	type aged struct {
		id      string
		touched int64
	}
	all := make([]aged, 0, len(st.sessions))
	for id, session := range st.sessions {
		all = append(all, aged{id: id, touched: session.LastTouched()})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].touched < all[j].touched })
	for _, entry := range all {
		if len(st.sessions) < st.maxEntries {
			break
		}
		delete(st.sessions, entry.id)
		st.logger.Debug("evicted clarification session over capacity", zap.String("session_id", entry.id))
	}
}
