// AngelaMos | 2026
// where.go

package core

import (
	"strconv"
	"strings"
)

// Where accumulates AND-ed SQL conditions with positional arguments.
type Where struct {
	conds []string
	Args  []any
}

func NewWhere(base ...string) *Where {
	return &Where{conds: base}
}

// Arg binds v and returns its placeholder.
func (w *Where) Arg(v any) string {
	w.Args = append(w.Args, v)
	return "$" + strconv.Itoa(len(w.Args))
}

func (w *Where) And(cond string) *Where {
	w.conds = append(w.conds, cond)
	return w
}

// Next is the placeholder the following bound argument would get, for
// LIMIT and OFFSET appended after the conditions.
func (w *Where) Next(offset int) string {
	return "$" + strconv.Itoa(len(w.Args)+offset)
}

func (w *Where) String() string {
	if len(w.conds) == 0 {
		return "TRUE"
	}
	return strings.Join(w.conds, " AND ")
}
