package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"cardapio/internal/models"
	"cardapio/internal/pricing"
	"cardapio/internal/repository"
)

// Session is one cashier checkout in progress: the cart plus the form
// fields around it. Money inputs stay as typed by the cashier and are
// parsed every time totals are computed.
type Session struct {
	ID              string         `json:"id"`
	Cart            pricing.Cart   `json:"cart"`
	Note            string         `json:"note"`
	DeliveryFee     string         `json:"deliveryFee"`
	DiscountPercent string         `json:"discountPercent"`
	DiscountValue   string         `json:"discountValue"`
	Coupon          *models.Coupon `json:"coupon,omitempty"`
	PaymentMethod   string         `json:"paymentMethod,omitempty"`
	PedidoID        string         `json:"pedidoId,omitempty"`
	FinalizingAt    *time.Time     `json:"finalizingAt,omitempty"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// finalizeClaimTTL bounds how long a finalize can hold a session; a claim
// left by a crashed request expires after it.
const finalizeClaimTTL = time.Minute

func (s Session) Totals() pricing.Totals {
	return pricing.ComputeTotals(s.Cart, s.DeliveryFee, s.DiscountPercent, s.DiscountValue, s.Coupon)
}

func (s Session) finalizing(now time.Time) bool {
	return s.FinalizingAt != nil && now.Sub(*s.FinalizingAt) < finalizeClaimTTL
}

// reset empties everything but the id, as after a finished sale.
func (s Session) reset() Session {
	return Session{ID: s.ID, Cart: pricing.Cart{}}
}

// SessionStore keeps checkout sessions. Update applies fn atomically for
// one session; a missing session is repository.ErrNotFound.
type SessionStore interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore is the single-process store used when Redis is not
// configured. Sessions idle for longer than ttl are dropped on access.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Create(ctx context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = m.now()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemorySessionStore) Get(ctx context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(id)
}

func (m *MemorySessionStore) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(id)
	if err != nil {
		return Session{}, err
	}
	s.Cart = append(pricing.Cart(nil), s.Cart...)
	if err := fn(&s); err != nil {
		return Session{}, err
	}
	s.UpdatedAt = m.now()
	m.sessions[id] = s
	return s, nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) lookup(id string) (Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, repository.ErrNotFound
	}
	if m.ttl > 0 && m.now().Sub(s.UpdatedAt) > m.ttl {
		delete(m.sessions, id)
		return Session{}, repository.ErrNotFound
	}
	return s, nil
}

// RedisSessionStore keeps sessions as JSON values that expire after ttl
// without activity, so several API instances can share them.
type RedisSessionStore struct {
	repo *repository.RedisRepository
	ttl  time.Duration
	now  func() time.Time
}

func NewRedisSessionStore(repo *repository.RedisRepository, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{repo: repo, ttl: ttl, now: time.Now}
}

func sessionKey(id string) string {
	return "caixa:session:" + id
}

func (r *RedisSessionStore) Create(ctx context.Context, s Session) error {
	s.UpdatedAt = r.now()
	return r.repo.SetJSON(ctx, sessionKey(s.ID), s, r.ttl)
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (Session, error) {
	var s Session
	if err := r.repo.GetJSON(ctx, sessionKey(id), &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (r *RedisSessionStore) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	var result Session
	err := r.repo.UpdateJSON(ctx, sessionKey(id), r.ttl, func(current []byte) (interface{}, error) {
		if current == nil {
			return nil, repository.ErrNotFound
		}
		var s Session
		if err := json.Unmarshal(current, &s); err != nil {
			return nil, err
		}
		if err := fn(&s); err != nil {
			return nil, err
		}
		s.UpdatedAt = r.now()
		result = s
		return s, nil
	})
	if err != nil {
		return Session{}, err
	}
	return result, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.repo.Del(ctx, sessionKey(id))
}
