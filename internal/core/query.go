// AngelaMos | 2026
// query.go

package core

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageParams is offset pagination for admin tables and profile lists.
// Feeds that grow while being read use cursors instead.
type PageParams struct {
	Page     int
	PageSize int
}

func (p *PageParams) Normalize() {
	p.Page = max(p.Page, 1)
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	p.PageSize = min(p.PageSize, maxPageSize)
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func PageFromRequest(r *http.Request) PageParams {
	p := PageParams{
		Page:     QueryInt(r, "page", 1),
		PageSize: QueryInt(r, "page_size", defaultPageSize),
	}
	p.Normalize()
	return p
}

// QueryInt falls back to def when key is missing or not an integer.
func QueryInt(r *http.Request, key string, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return n
	}
	return def
}

// QueryInt64 is nil when key is missing or not an integer, so price
// filters can tell "unset" from zero.
func QueryInt64(r *http.Request, key string) *int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes s match literally inside an ILIKE pattern.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
