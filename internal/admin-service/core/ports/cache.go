package ports

import (
	"context"

	"shop-admin/internal/admin-service/core/domain/dto"
)

// IUsersViewCache is a versioned cache of rendered user pages. Entries are
// written and read under an explicit version; Invalidate moves to a new
// version so that every earlier entry becomes unreachable.
type IUsersViewCache interface {
	Version(ctx context.Context) (uint64, error)
	Get(ctx context.Context, version uint64, key string) (dto.UsersPage, bool, error)
	Set(ctx context.Context, version uint64, key string, page dto.UsersPage) error
	Invalidate(ctx context.Context) (uint64, error)
	Close() error
}
