package db

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

// FoldedEq matches column against value ignoring case. The value is trimmed first,
// which is the same rule shared.FoldName applies in memory.
func FoldedEq(column, value string) squirrel.Sqlizer {
	return squirrel.Expr("lower("+column+") = lower(?)", strings.TrimSpace(value))
}
