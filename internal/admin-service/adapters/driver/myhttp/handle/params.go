package handle

import (
	"net/url"
	"strconv"
	"strings"

	"shop-admin/internal/admin-service/core/domain/dto"
)

// ParseUsersQuery normalises the listing query string. A missing, malformed
// or non-positive page becomes 1; the page size is fixed.
func ParseUsersQuery(values url.Values) dto.UsersQuery {
	page, err := strconv.Atoi(strings.TrimSpace(values.Get("page")))
	if err != nil || page < 1 {
		page = 1
	}
	return dto.UsersQuery{
		Page:     page,
		PageSize: dto.DefaultPageSize,
		Q:        strings.TrimSpace(values.Get("q")),
	}
}
