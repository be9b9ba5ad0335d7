package shared

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const idLength = 10

// NewID returns a generated string id of idLength characters starting with prefix.
func NewID(prefix string) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if len(prefix) >= idLength {
		prefix = prefix[:3]
	}
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return prefix + raw[:idLength-len(prefix)]
}

// FoldName normalises a name for case-insensitive comparison: trimmed, then
// lowercased like Postgres lower(). db.FoldedEq applies the same rule in SQL.
// A Caser is stateful, so each call builds its own.
func FoldName(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}
