package ports

import (
	"context"

	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/domain/models"
)

type IAccessGuard interface {
	CheckAdmin(caller models.Caller) error
}

type IUsersService interface {
	GetUsers(ctx context.Context, caller models.Caller, query dto.UsersQuery) (dto.UsersPage, error)
	SaveUserPoints(ctx context.Context, caller models.Caller, userId string, points int64) error
}

type INavigationService interface {
	Sidebar(caller models.Caller) (dto.Sidebar, error)
}
