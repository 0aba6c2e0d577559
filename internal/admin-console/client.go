package adminconsole

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/myerrors"
)

// Client talks to the admin service over HTTP and maps its statuses back
// onto the error taxonomy.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type apiError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (c *Client) GetUsers(ctx context.Context, page int, q string) (dto.UsersPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	if q != "" {
		params.Set("q", q)
	}

	var res dto.UsersPage
	if err := c.do(ctx, http.MethodGet, "/admin/users?"+params.Encode(), nil, &res, myerrors.ErrInvalidQuery); err != nil {
		return dto.UsersPage{}, err
	}
	return res, nil
}

func (c *Client) SaveUserPoints(ctx context.Context, userId string, points int64) error {
	body := map[string]int64{"points": points}
	path := "/admin/users/" + url.PathEscape(userId) + "/points"
	return c.do(ctx, http.MethodPost, path, body, nil, myerrors.ErrInvalidPoints)
}

func (c *Client) Sidebar(ctx context.Context) (dto.Sidebar, error) {
	var res dto.Sidebar
	if err := c.do(ctx, http.MethodGet, "/admin/nav", nil, &res, myerrors.ErrInvalidQuery); err != nil {
		return dto.Sidebar{}, err
	}
	return res, nil
}

// WatchURL is the websocket endpoint that pushes users-view changes.
func (c *Client) WatchURL() string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + "/admin/ws/users"
	case strings.HasPrefix(c.baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + "/admin/ws/users"
	default:
		return c.baseURL + "/admin/ws/users"
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, badRequest error) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", myerrors.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, data, badRequest)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func statusError(code int, data []byte, badRequest error) error {
	var apiErr apiError
	msg := strings.TrimSpace(string(data))
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}

	var sentinel error
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = myerrors.ErrAuthorization
	case http.StatusNotFound:
		sentinel = myerrors.ErrUserNotFound
	case http.StatusBadRequest:
		sentinel = badRequest
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		sentinel = myerrors.ErrStoreUnavailable
	default:
		return fmt.Errorf("unexpected status %d: %s", code, msg)
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
