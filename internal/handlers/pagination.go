package handlers

import (
	"errors"
	"strconv"
)

const maxPageLimit = 100

var errInvalidPagination = errors.New("page and limit must be positive integers")

func parsePaginationParams(pageStr, limitStr string) (int64, int64, error) {
	page := int64(1)
	limit := int64(20)

	if pageStr != "" {
		p, err := strconv.ParseInt(pageStr, 10, 64)
		if err != nil || p < 1 {
			return 0, 0, errInvalidPagination
		}
		page = p
	}

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, errInvalidPagination
		}
		limit = min(l, maxPageLimit)
	}

	return page, limit, nil
}

func totalPages(total, limit int64) int64 {
	if total == 0 || limit == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
