package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/gemini-image-studio/pkg/studio"
)

var errSessionNotFound = errors.New("session not found")

type sessionEntry struct {
	session  *studio.Session
	lastSeen time.Time
}

// Registry はメモリ上のセッション一覧です。TTL を過ぎたものは作成時にまとめて破棄します。
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewRegistry は Registry を作成します。ttl が 0 以下なら破棄しません。
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Create は新しい ID を払い出して factory で作ったセッションを登録します。
func (r *Registry) Create(factory func(id string) (*studio.Session, error)) (*studio.Session, error) {
	id := uuid.NewString()
	s, err := factory(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	r.sessions[id] = &sessionEntry{session: s, lastSeen: r.now()}
	return s, nil
}

// Get はセッションを返し、最終アクセス時刻を更新します。
// TTL を過ぎたセッションはその場で破棄され、見つからない扱いになります。
func (r *Registry) Get(id string) (*studio.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	now := r.now()
	if r.expired(e, now) {
		delete(r.sessions, id)
		return nil, errSessionNotFound
	}
	e.lastSeen = now
	return e.session, nil
}

// Delete はセッションを破棄します。生成中の呼び出しはそのまま完了まで走ります。
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len は登録数です。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) sweepLocked() {
	if r.ttl <= 0 {
		return
	}
	now := r.now()
	for id, e := range r.sessions {
		if r.expired(e, now) {
			delete(r.sessions, id)
		}
	}
}

// expired は TTL 切れかどうかを返します。生成中のセッションは期限切れにしません。
func (r *Registry) expired(e *sessionEntry, now time.Time) bool {
	if r.ttl <= 0 || !e.lastSeen.Before(now.Add(-r.ttl)) {
		return false
	}
	return e.session.Lifecycle().Snapshot().Status != studio.StatusInFlight
}
