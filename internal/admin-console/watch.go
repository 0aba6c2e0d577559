package adminconsole

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"shop-admin/internal/admin-service/core/domain/models"

	"github.com/gorilla/websocket"
)

type watchMessage struct {
	Type string                   `json:"type"`
	Data models.UsersChangedEvent `json:"data"`
}

// Watch subscribes to users-view changes and calls onChange for each one
// until ctx ends or the connection drops.
func Watch(ctx context.Context, wsURL, token string, onChange func(models.UsersChangedEvent)) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %w", wsURL, statusError(resp.StatusCode, nil, err))
		}
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read users changes: %w", err)
		}

		var msg watchMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Type == "users_changed" {
			onChange(msg.Data)
		}
	}
}
