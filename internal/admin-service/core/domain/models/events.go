package models

import "time"

const (
	EventUserPointsChanged = "user.points.changed"

	// RoutingUsersChanged is the broker routing key for every users-view change.
	RoutingUsersChanged = "admin.users.changed"
)

// UsersChangedEvent tells readers of the admin users view to revalidate.
type UsersChangedEvent struct {
	EventId   string    `json:"event_id"`
	Type      string    `json:"type"`
	UserId    string    `json:"user_id"`
	Points    int64     `json:"points"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
	Origin    string    `json:"origin"`
}
