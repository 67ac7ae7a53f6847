package store

import (
	"strings"

	"github.com/dukerupert/pantrypal/internal/model"
)

// orderBy builds an ORDER BY clause for req. Sort columns are looked up in
// allowed, which maps API names to SQL expressions. With no sort column the
// newest rows come first; otherwise id DESC breaks ties.
func orderBy(req model.PageRequest, allowed map[string]string, idCol string) string {
	col, ok := allowed[strings.ToLower(strings.TrimSpace(req.SortColumn))]
	if !ok {
		return " ORDER BY " + idCol + " DESC"
	}
	dir := "ASC"
	if strings.EqualFold(req.SortDirection, "DESC") {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", " + idCol + " DESC"
}

const limitOffset = " LIMIT ? OFFSET ?"

func pageArgs(req model.PageRequest) []any {
	page := req.Page
	if page < 0 {
		page = 0
	}
	return []any{model.PageSize, page * model.PageSize}
}

func likePattern(filter string) string {
	return "%" + strings.ToLower(strings.TrimSpace(filter)) + "%"
}
