package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliyakundil/Movie-Search-3.5.9.io/internal/domain"
)

// Source creates new guest sessions. Satisfied by the TMDB client and by the
// browser gateway, which proxies through the server.
type Source interface {
	CreateGuestSession(ctx context.Context) (domain.GuestSession, error)
}

// Manager owns the guest-session lifecycle: lazy creation, reuse until
// expiry, persistence through a Cache. There is no rotation or manual
// invalidation path; an expired session is simply replaced on the next
// Ensure.
type Manager struct {
	mu     sync.Mutex
	cache  Cache
	source Source
	logger *zap.Logger
	now    func() time.Time
}

// NewManager constructs a Manager. cache may be nil, in which case sessions
// live only in process memory.
func NewManager(cache Cache, source Source, logger *zap.Logger) *Manager {
	if cache == nil {
		cache = NewMemCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cache:  cache,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Ensure returns a live guest session token, creating one only when the
// cached token is missing or expired. Failure here is soft: callers must keep
// search available and only disable rating writes.
func (m *Manager) Ensure(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cached, ok, err := m.cache.Load()
	if err != nil {
		m.logger.Warn("guest session cache read failed", zap.Error(err))
	}
	if ok && cached.Live(m.now()) {
		return cached.ID, nil
	}

	created, err := m.source.CreateGuestSession(ctx)
	if err != nil {
		return "", err
	}
	if err := m.cache.Save(created); err != nil {
		m.logger.Warn("guest session cache write failed", zap.Error(err))
	}
	m.logger.Info("guest session created", zap.Time("expires_at", created.ExpiresAt))
	return created.ID, nil
}

// Cached returns the live cached token without ever creating one, or "" when
// none is usable.
func (m *Manager) Cached() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cached, ok, err := m.cache.Load()
	if err != nil || !ok || !cached.Live(m.now()) {
		return ""
	}
	return cached.ID
}
