package myerrors

import "errors"

var (
	ErrAuthorization    = errors.New("admin privileges required")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidPoints    = errors.New("points must be a whole number")
	ErrInvalidQuery     = errors.New("invalid users query")
	ErrStoreUnavailable = errors.New("store temporarily unavailable")
	ErrBusy             = errors.New("another request is in progress")
)
