package ports

import (
	"context"

	"shop-admin/internal/admin-service/core/domain/dto"

	"github.com/jackc/pgx/v5/pgxpool"
)

type IDB interface {
	GetPool() *pgxpool.Pool
	IsAlive(ctx context.Context) error
	Close() error
}

type IUsersRepo interface {
	// total matching rows and the requested page
	GetUsers(ctx context.Context, query dto.UsersQuery) (int, []dto.User, error)
	UpdateUserPoints(ctx context.Context, userId string, points int64) error
}
