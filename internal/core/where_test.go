// AngelaMos | 2026
// where_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhereNumbersArguments(t *testing.T) {
	w := NewWhere("deleted_at IS NULL")
	w.And("role = " + w.Arg("admin"))
	p := w.Arg("%bob%")
	w.And("(email ILIKE " + p + " OR name ILIKE " + p + ")")

	assert.Equal(t,
		"deleted_at IS NULL AND role = $1 AND (email ILIKE $2 OR name ILIKE $2)",
		w.String())
	assert.Equal(t, []any{"admin", "%bob%"}, w.Args)
	assert.Equal(t, "$3", w.Next(1))
}

func TestEmptyWhereMatchesAll(t *testing.T) {
	assert.Equal(t, "TRUE", NewWhere().String())
}
