package db

import (
	"context"
	"fmt"
	"strings"

	"shop-admin/internal/admin-service/core/domain/dto"
	"shop-admin/internal/admin-service/core/myerrors"
	"shop-admin/internal/admin-service/core/ports"

	"github.com/jackc/pgx/v5"
)

type UsersRepo struct {
	db ports.IDB
}

var _ ports.IUsersRepo = (*UsersRepo)(nil)

func NewUsersRepo(db ports.IDB) *UsersRepo {
	return &UsersRepo{db: db}
}

const (
	usersFilter = `($1 = '' OR u.username ILIKE $2 ESCAPE '\' OR u.user_id::text ILIKE $2 ESCAPE '\')`

	countUsersQuery = `
	SELECT COUNT(*)
	FROM users u
	WHERE ` + usersFilter + `;`

	// created_at alone is not unique, user_id breaks ties so pages never overlap
	listUsersQuery = `
	SELECT
		u.user_id,
		u.username,
		u.points,
		u.last_login_at,
		u.created_at,
		(SELECT COUNT(*) FROM orders o WHERE o.user_id = u.user_id)::int AS order_count
	FROM users u
	WHERE ` + usersFilter + `
	ORDER BY u.created_at DESC NULLS LAST, u.user_id ASC
	LIMIT $3 OFFSET $4;`

	updatePointsQuery = `UPDATE users SET points = $2 WHERE user_id = $1;`
)

func (ur *UsersRepo) GetUsers(ctx context.Context, query dto.UsersQuery) (int, []dto.User, error) {
	// count and page come from one snapshot
	tx, err := ur.db.GetPool().BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return 0, nil, classify("begin users snapshot", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	q := strings.TrimSpace(query.Q)
	pattern := likePattern(q)

	totalCount := 0
	if err := tx.QueryRow(ctx, countUsersQuery, q, pattern).Scan(&totalCount); err != nil {
		return 0, nil, classify("count users", err)
	}

	users := []dto.User{}
	if query.Offset() >= totalCount {
		return totalCount, users, nil
	}

	rows, err := tx.Query(ctx, listUsersQuery, q, pattern, query.PageSize, query.Offset())
	if err != nil {
		return 0, nil, classify("query users", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u dto.User
		if err := rows.Scan(
			&u.UserId,
			&u.Username,
			&u.Points,
			&u.LastLoginAt,
			&u.CreatedAt,
			&u.OrderCount,
		); err != nil {
			return 0, nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, classify("read users", err)
	}

	return totalCount, users, nil
}

func (ur *UsersRepo) UpdateUserPoints(ctx context.Context, userId string, points int64) error {
	tag, err := ur.db.GetPool().Exec(ctx, updatePointsQuery, userId, points)
	if err != nil {
		return classify("update points", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", myerrors.ErrUserNotFound, userId)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a search term into a literal substring pattern.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
