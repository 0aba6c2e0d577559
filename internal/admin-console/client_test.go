package adminconsole

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/myerrors"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeError(w http.ResponseWriter, code int, msg string) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": msg, "code": code})
}

func TestClientGetUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/admin/users", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "al ice", r.URL.Query().Get("q"))
		_ = json.NewEncoder(w).Encode(dto.UsersPage{Items: []dto.User{{UserId: "u1"}}, Total: 21, Page: 2, PageSize: 20})
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL+"/", "tok").GetUsers(context.Background(), 2, "al ice")
	require.NoError(t, err)
	assert.Equal(t, 21, page.Total)
	require.Len(t, page.Items, 1)
}

func TestClientSaveUserPoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/users/u%2F1/points", r.URL.EscapedPath())

		var body map[string]int64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(150), body["points"])
		_, _ = w.Write([]byte(`{"msg":"points updated"}`))
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, "tok").SaveUserPoints(context.Background(), "u/1", 150))
}

func TestClientSidebar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/nav", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		_ = json.NewEncoder(w).Encode(dto.Sidebar{
			TitleKey:   "admin.title",
			Items:      []dto.NavItem{{Href: "/admin/users", Icon: "users", LabelKey: "admin.nav.users"}},
			LoggedInAs: "root",
		})
	}))
	defer srv.Close()

	sidebar, err := NewClient(srv.URL, "tok").Sidebar(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "root", sidebar.LoggedInAs)
	require.Len(t, sidebar.Items, 1)
	assert.Equal(t, "/admin/users", sidebar.Items[0].Href)

	_, err = NewClient(srv.URL, "other").Sidebar(context.Background())
	assert.ErrorIs(t, err, myerrors.ErrAuthorization)
}

func TestClientMapsStatuses(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{code: http.StatusUnauthorized, want: myerrors.ErrAuthorization},
		{code: http.StatusForbidden, want: myerrors.ErrAuthorization},
		{code: http.StatusNotFound, want: myerrors.ErrUserNotFound},
		{code: http.StatusBadRequest, want: myerrors.ErrInvalidPoints},
		{code: http.StatusServiceUnavailable, want: myerrors.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, tt.code, "nope")
		}))

		err := NewClient(srv.URL, "tok").SaveUserPoints(context.Background(), "u1", 1)
		assert.ErrorIs(t, err, tt.want, "status %d", tt.code)
		assert.Contains(t, err.Error(), "nope")
		srv.Close()
	}
}

func TestClientUnreachableIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "tok").GetUsers(context.Background(), 1, "")
	assert.ErrorIs(t, err, myerrors.ErrStoreUnavailable)
}

func TestClientWatchURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:3004/admin/ws/users", NewClient("http://localhost:3004", "").WatchURL())
	assert.Equal(t, "wss://admin.example.com/admin/ws/users", NewClient("https://admin.example.com/", "").WatchURL())
}

func TestWatchDeliversUsersChanged(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"other"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"users_changed","data":{"user_id":"u123","points":150}}`))
		// hold the connection until the client closes it
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got := make(chan models.UsersChangedEvent, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Watch(ctx, NewClient(srv.URL, "tok").WatchURL(), "tok", func(e models.UsersChangedEvent) {
			got <- e
			cancel()
		})
	}()

	select {
	case e := <-got:
		assert.Equal(t, "u123", e.UserId)
		assert.Equal(t, int64(150), e.Points)
	case <-time.After(3 * time.Second):
		t.Fatal("no event delivered")
	}
	assert.NoError(t, <-errCh)
}
