package service

import (
	"fmt"
	"time"

	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/myerrors"
)

// AccessGuard decides whether a caller may read or change admin data. It
// holds no session state; everything it needs arrives in the caller.
type AccessGuard struct {
	now func() time.Time
}

func NewAccessGuard() *AccessGuard {
	return &AccessGuard{now: time.Now}
}

func (g *AccessGuard) CheckAdmin(caller models.Caller) error {
	if caller.IsAnonymous() {
		return fmt.Errorf("%w: no authenticated caller", myerrors.ErrAuthorization)
	}
	// zero expiry means the session carries none
	if !caller.ExpiresAt.IsZero() && !g.now().Before(caller.ExpiresAt) {
		return fmt.Errorf("%w: session expired", myerrors.ErrAuthorization)
	}
	if caller.Role != models.RoleAdmin {
		return fmt.Errorf("%w: role %q", myerrors.ErrAuthorization, caller.Role)
	}
	return nil
}
