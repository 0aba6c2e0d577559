package myhttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shop-admin/internal/admin-service/adapters/driven/cache"
	"shop-admin/internal/admin-service/adapters/driver/myhttp/middleware"
	"shop-admin/internal/admin-service/adapters/driver/myhttp/ws"
	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/myerrors"
	"shop-admin/internal/admin-service/core/service"
	"shop-admin/internal/mylogger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-secret"

type stubRepo struct {
	mu    sync.Mutex
	users map[string]int64
}

func (r *stubRepo) GetUsers(ctx context.Context, query dto.UsersQuery) (int, []dto.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []dto.User{}
	for id, points := range r.users {
		if query.Q == "" || strings.Contains(id, strings.ToLower(query.Q)) {
			items = append(items, dto.User{UserId: id, Points: points})
		}
	}
	return len(items), items, nil
}

func (r *stubRepo) UpdateUserPoints(ctx context.Context, userId string, points int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userId]; !ok {
		return myerrors.ErrUserNotFound
	}
	r.users[userId] = points
	return nil
}

type alive struct{}

func (alive) IsAlive(ctx context.Context) error { return nil }

func newTestHandler(t *testing.T) (http.Handler, *stubRepo) {
	t.Helper()
	log := mylogger.NewWithWriter(io.Discard, mylogger.LevelError)
	guard := service.NewAccessGuard()
	repo := &stubRepo{users: map[string]int64{"u123": 100}}
	dispatcher := ws.NewDispatcher(log, guard)

	usersService := service.NewUsersService(context.Background(), log, guard, repo, cache.NewMemory(time.Minute), service.NewFanoutPublisher(dispatcher))
	return NewHandler(log, Routes{
		JwtSecret:    testSecret,
		UsersService: usersService,
		NavService:   service.NewNavigationService(log, guard),
		Dispatcher:   dispatcher,
		Health:       alive{},
	}), repo
}

func do(t *testing.T, h http.Handler, method, path, body string, caller *models.Caller) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if caller != nil {
		token, err := middleware.SignToken(testSecret, *caller, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSaveThenListOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)
	admin := &models.Caller{UserId: "a1", Role: models.RoleAdmin}

	rec := do(t, h, http.MethodGet, "/admin/users?q=u12", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/admin/users/u123/points", `{"points": 150}`, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/admin/users?q=u12", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)

	var page dto.UsersPage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(150), page.Items[0].Points)
}

func TestAdminRoutesAuth(t *testing.T) {
	h, repo := newTestHandler(t)
	buyer := &models.Caller{UserId: "b1", Role: "USER"}

	tests := []struct {
		method   string
		path     string
		body     string
		caller   *models.Caller
		wantCode int
	}{
		{method: http.MethodGet, path: "/health", wantCode: http.StatusOK},
		{method: http.MethodGet, path: "/admin/nav", wantCode: http.StatusUnauthorized},
		{method: http.MethodGet, path: "/admin/users", wantCode: http.StatusUnauthorized},
		{method: http.MethodGet, path: "/admin/nav", caller: buyer, wantCode: http.StatusForbidden},
		{method: http.MethodGet, path: "/admin/users", caller: buyer, wantCode: http.StatusForbidden},
		{method: http.MethodPost, path: "/admin/users/u123/points", body: `{"points": 1}`, caller: buyer, wantCode: http.StatusForbidden},
		{method: http.MethodGet, path: "/admin/ws/users", caller: buyer, wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		rec := do(t, h, tt.method, tt.path, tt.body, tt.caller)
		assert.Equal(t, tt.wantCode, rec.Code, "%s %s", tt.method, tt.path)
	}
	assert.Equal(t, int64(100), repo.users["u123"])
}

func TestSidebarOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/admin/nav", "", &models.Caller{UserId: "a1", Username: "root", Role: models.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code)

	var sidebar dto.Sidebar
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sidebar))
	assert.Equal(t, "root", sidebar.LoggedInAs)
	assert.Len(t, sidebar.Items, 11)
}

func TestUnknownUserOverHTTP(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodPost, "/admin/users/nobody/points", `{"points": 5}`, &models.Caller{UserId: "a1", Role: models.RoleAdmin})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
