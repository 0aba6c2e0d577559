package dto

import (
	"encoding/json"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// User is the admin-facing projection of a customer account.
type User struct {
	UserId      string     `json:"user_id"`
	Username    *string    `json:"username"`
	Points      int64      `json:"points"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   *time.Time `json:"created_at"`
	OrderCount  int        `json:"order_count"`
}

// DisplayName is the username when set, the user id otherwise.
func (u User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.UserId
}

type UsersQuery struct {
	Page     int
	PageSize int
	Q        string
}

// Offset is the number of matching rows skipped before this page.
func (q UsersQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

type UsersPage struct {
	Items    []User `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// TotalPages rounds up; an empty result has zero pages.
func (p UsersPage) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// SavePointsRequest keeps the raw number so that fractional values can be
// rejected before the mutation runs.
type SavePointsRequest struct {
	Points json.Number `json:"points"`
}

type SavePointsResponse struct {
	Msg    string `json:"msg"`
	UserId string `json:"user_id"`
	Points int64  `json:"points"`
}
