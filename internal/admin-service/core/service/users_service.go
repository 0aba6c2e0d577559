package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/domain/models"
	"shop-admin/internal/admin-service/core/myerrors"
	"shop-admin/internal/admin-service/core/ports"
	"shop-admin/internal/mylogger"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const sharedLoadTimeout = 10 * time.Second

type UsersService struct {
	ctx       context.Context
	mylog     mylogger.Logger
	guard     ports.IAccessGuard
	usersRepo ports.IUsersRepo
	cache     ports.IUsersViewCache
	publisher ports.IUsersEventPublisher
	loads     singleflight.Group
	now       func() time.Time
}

func NewUsersService(
	ctx context.Context,
	mylog mylogger.Logger,
	guard ports.IAccessGuard,
	usersRepo ports.IUsersRepo,
	cache ports.IUsersViewCache,
	publisher ports.IUsersEventPublisher,
) *UsersService {
	return &UsersService{
		ctx:       ctx,
		mylog:     mylog,
		guard:     guard,
		usersRepo: usersRepo,
		cache:     cache,
		publisher: publisher,
		now:       time.Now,
	}
}

// ======================= GetUsers =======================
func (us *UsersService) GetUsers(ctx context.Context, caller models.Caller, query dto.UsersQuery) (dto.UsersPage, error) {
	mylog := us.mylog.Action("get_users")

	if err := us.guard.CheckAdmin(caller); err != nil {
		mylog.Warn("access denied", "user_id", caller.UserId)
		return dto.UsersPage{}, err
	}

	if err := validateQuery(query); err != nil {
		return dto.UsersPage{}, err
	}

	key := usersCacheKey(query)
	version, err := us.cache.Version(ctx)
	if err != nil {
		mylog.Warn("users view cache unavailable, reading store", "error", err.Error())
		return us.loadUsers(ctx, query)
	}

	page, ok, err := us.cache.Get(ctx, version, key)
	if err != nil {
		mylog.Warn("users view cache read failed", "error", err.Error())
	} else if ok {
		mylog.Debug("users view cache hit", "key", key)
		return page, nil
	}

	ch := us.loads.DoChan(fmt.Sprintf("%d|%s", version, key), func() (interface{}, error) {
		// joined callers share this load, so it must not end with the first of them
		loadCtx, cancel := context.WithTimeout(us.ctx, sharedLoadTimeout)
		defer cancel()

		page, err := us.loadUsers(loadCtx, query)
		if err != nil {
			return nil, err
		}
		if err := us.cache.Set(loadCtx, version, key, page); err != nil {
			mylog.Warn("users view cache write failed", "error", err.Error())
		}
		return page, nil
	})

	select {
	case <-ctx.Done():
		return dto.UsersPage{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return dto.UsersPage{}, res.Err
		}
		if res.Shared {
			mylog.Debug("users load shared", "key", key)
		}
		return res.Val.(dto.UsersPage), nil
	}
}

func (us *UsersService) loadUsers(ctx context.Context, query dto.UsersQuery) (dto.UsersPage, error) {
	total, users, err := us.usersRepo.GetUsers(ctx, query)
	if err != nil {
		us.mylog.Action("get_users").Error("failed to load users", err)
		return dto.UsersPage{}, fmt.Errorf("get users: %w", err)
	}
	if users == nil {
		users = []dto.User{}
	}

	return dto.UsersPage{
		Items:    users,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

// ======================= SaveUserPoints =======================
func (us *UsersService) SaveUserPoints(ctx context.Context, caller models.Caller, userId string, points int64) error {
	mylog := us.mylog.Action("save_user_points").With("user_id", userId)

	if err := us.guard.CheckAdmin(caller); err != nil {
		mylog.Warn("access denied", "caller_id", caller.UserId)
		return err
	}

	if strings.TrimSpace(userId) == "" {
		return fmt.Errorf("%w: empty user id", myerrors.ErrUserNotFound)
	}

	if err := us.usersRepo.UpdateUserPoints(ctx, userId, points); err != nil {
		if errors.Is(err, myerrors.ErrUserNotFound) {
			mylog.Warn("failed to update points, unknown user")
			return err
		}
		mylog.Error("failed to update points", err)
		return fmt.Errorf("update user points: %w", err)
	}

	// a stale listing after a successful write must not go unnoticed
	if _, err := us.cache.Invalidate(ctx); err != nil {
		mylog.Error("failed to invalidate users view", err)
		return fmt.Errorf("%w: invalidate users view: %v", myerrors.ErrStoreUnavailable, err)
	}

	event := models.UsersChangedEvent{
		EventId:   uuid.NewString(),
		Type:      models.EventUserPointsChanged,
		UserId:    userId,
		Points:    points,
		ChangedBy: caller.UserId,
		ChangedAt: us.now().UTC(),
		Origin:    mylogger.InstanceID(),
	}
	if us.publisher != nil {
		if err := us.publisher.PublishUsersChanged(ctx, event); err != nil {
			mylog.Warn("failed to publish users changed event", "error", err.Error())
		}
	}

	mylog.Info("points updated", "points", points, "changed_by", caller.UserId)
	return nil
}

func validateQuery(query dto.UsersQuery) error {
	if query.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", myerrors.ErrInvalidQuery, query.Page)
	}
	if query.PageSize < 1 || query.PageSize > dto.MaxPageSize {
		return fmt.Errorf("%w: page size must be in range [1, %d], got %d", myerrors.ErrInvalidQuery, dto.MaxPageSize, query.PageSize)
	}
	return nil
}

// usersCacheKey folds case because the filter itself is case-insensitive.
func usersCacheKey(query dto.UsersQuery) string {
	return fmt.Sprintf("page=%d|size=%d|q=%s", query.Page, query.PageSize, strings.ToLower(query.Q))
}
