package cache

import (
	"context"
	"sync"
	"time"

	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/ports"
)

type memoryEntry struct {
	page    dto.UsersPage
	expires time.Time
}

// Memory is a per-process users view cache. Only the current version is
// kept; entries written under an older version are dropped on arrival.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	version uint64
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ ports.IUsersViewCache = (*Memory)(nil)

// NewMemory returns a cache that never hits when ttl is zero.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Version(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version, nil
}

func (m *Memory) Get(ctx context.Context, version uint64, key string) (dto.UsersPage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if version != m.version {
		return dto.UsersPage{}, false, nil
	}
	entry, ok := m.entries[key]
	if !ok {
		return dto.UsersPage{}, false, nil
	}
	if !m.now().Before(entry.expires) {
		delete(m.entries, key)
		return dto.UsersPage{}, false, nil
	}
	return clonePage(entry.page), true, nil
}

func (m *Memory) Set(ctx context.Context, version uint64, key string, page dto.UsersPage) error {
	if m.ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if version != m.version {
		return nil
	}
	m.entries[key] = memoryEntry{
		page:    clonePage(page),
		expires: m.now().Add(m.ttl),
	}
	return nil
}

func (m *Memory) Invalidate(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.version++
	m.entries = make(map[string]memoryEntry)
	return m.version, nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Close() error {
	return nil
}

func clonePage(page dto.UsersPage) dto.UsersPage {
	items := make([]dto.User, len(page.Items))
	copy(items, page.Items)
	page.Items = items
	return page
}
