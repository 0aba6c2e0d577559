package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/myerrors"
	"shop-admin/internal/mylogger"
)

var (
	testAdmin = models.Caller{UserId: "admin-1", Username: "root", Role: models.RoleAdmin}
	testBuyer = models.Caller{UserId: "buyer-1", Role: "USER"}
)

func quietLogger() mylogger.Logger {
	return mylogger.NewWithWriter(io.Discard, mylogger.LevelError)
}

// memRepo mirrors the postgres repository semantics over a slice.
type memRepo struct {
	mu        sync.Mutex
	users     []dto.User
	queries   int
	updates   int
	failWith  error
	lastQuery dto.UsersQuery
}

func strPtr(s string) *string { return &s }

func newMemRepo(n int) *memRepo {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &memRepo{}
	for i := 0; i < n; i++ {
		created := base.Add(time.Duration(i) * time.Hour)
		r.users = append(r.users, dto.User{
			UserId:    fmt.Sprintf("u%03d", i),
			Username:  strPtr(fmt.Sprintf("user%03d", i)),
			Points:    int64(i),
			CreatedAt: &created,
		})
	}
	return r
}

func (r *memRepo) GetUsers(ctx context.Context, query dto.UsersQuery) (int, []dto.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.queries++
	r.lastQuery = query
	if r.failWith != nil {
		return 0, nil, r.failWith
	}

	q := strings.ToLower(query.Q)
	var matched []dto.User
	for _, u := range r.users {
		name := ""
		if u.Username != nil {
			name = strings.ToLower(*u.Username)
		}
		if q == "" || strings.Contains(name, q) || strings.Contains(strings.ToLower(u.UserId), q) {
			matched = append(matched, u)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.CreatedAt != nil && b.CreatedAt != nil && !a.CreatedAt.Equal(*b.CreatedAt) {
			return a.CreatedAt.After(*b.CreatedAt)
		}
		return a.UserId < b.UserId
	})

	offset := query.Offset()
	if offset >= len(matched) {
		return len(matched), []dto.User{}, nil
	}
	end := offset + query.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	page := make([]dto.User, end-offset)
	copy(page, matched[offset:end])
	return len(matched), page, nil
}

func (r *memRepo) UpdateUserPoints(ctx context.Context, userId string, points int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return r.failWith
	}
	for i := range r.users {
		if r.users[i].UserId == userId {
			r.users[i].Points = points
			r.updates++
			return nil
		}
	}
	return myerrors.ErrUserNotFound
}

type fakeCache struct {
	mu            sync.Mutex
	version       uint64
	entries       map[string]dto.UsersPage
	versionErr    error
	invalidateErr error
	hits          int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]dto.UsersPage{}}
}

func (c *fakeCache) Version(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, c.versionErr
}

func (c *fakeCache) Get(ctx context.Context, version uint64, key string) (dto.UsersPage, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, ok := c.entries[fmt.Sprintf("%d|%s", version, key)]
	if ok {
		c.hits++
	}
	return page, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, version uint64, key string, page dto.UsersPage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fmt.Sprintf("%d|%s", version, key)] = page
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidateErr != nil {
		return 0, c.invalidateErr
	}
	c.version++
	return c.version, nil
}

func (c *fakeCache) Close() error { return nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.UsersChangedEvent
	err    error
}

func (p *recordingPublisher) PublishUsersChanged(ctx context.Context, event models.UsersChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

var errStoreDown = fmt.Errorf("%w: connection refused", myerrors.ErrStoreUnavailable)
