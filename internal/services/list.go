package services

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ListParams are the common search and pagination inputs of list screens.
type ListParams struct {
	Q     string
	Page  int
	Limit int
}

// Page is one page of a list plus the size of the full result.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Q = strings.TrimSpace(p.Q)
	return p
}

func (p ListParams) offset() int { return (p.Page - 1) * p.Limit }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeAny matches q literally and case-insensitively against any of the
// columns; % and _ typed by the user are escaped.
func likeAny(db *gorm.DB, q string, columns ...string) *gorm.DB {
	if q == "" {
		return db
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		conds[i] = "lower(" + c + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return db.Where("("+strings.Join(conds, " OR ")+")", args...)
}
