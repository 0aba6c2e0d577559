package models

import (
	"context"
	"time"
)

const RoleAdmin = "ADMIN"

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserId    string
	Username  string
	Role      string
	ExpiresAt time.Time
}

func (c Caller) IsAnonymous() bool {
	return c.UserId == ""
}

func (c Caller) DisplayName() string {
	if c.Username != "" {
		return c.Username
	}
	return c.UserId
}

type callerKey struct{}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the anonymous caller when none was attached.
func CallerFrom(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey{}).(Caller)
	return c
}
