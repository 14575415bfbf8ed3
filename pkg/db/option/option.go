package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type sortOption struct {
	clause string
}

func (o sortOption) Apply(stmt *gorm.DB) *gorm.DB {
	if o.clause == "" {
		return stmt
	}
	return stmt.Order(o.clause)
}

// WithSortBy orders the statement by a pre-validated clause.
func WithSortBy(clause string) Option {
	return sortOption{clause: clause}
}

// WithQuerySortBy builds an ORDER BY clause from user-supplied sort and
// direction values, restricted to the allowed column set. Unknown columns
// fall back to created_at DESC.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) string {
	column := strings.TrimSpace(strings.ToLower(sortBy))
	if !allowed[column] {
		column = "created_at"
	}

	direction := strings.TrimSpace(strings.ToUpper(orderBy))
	if direction != "ASC" && direction != "DESC" {
		direction = "DESC"
	}

	return fmt.Sprintf("%s %s", column, direction)
}
