package service

import (
	"fmt"
	"strconv"
	"strings"

	"shop-admin/internal/admin-service/core/myerrors"
)

// ParsePoints accepts a base-10 integer with optional sign and surrounding
// whitespace. Anything else, including "1.5" and "12abc", is rejected.
func ParsePoints(text string) (int64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty value", myerrors.ErrInvalidPoints)
	}
	points, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", myerrors.ErrInvalidPoints, text)
	}
	return points, nil
}
