// Package pathutil converts save titles into portable folder names.
package pathutil

import (
	"strings"
	"unicode"
)

// invalidChars cannot appear in a folder name on at least one supported OS.
const invalidChars = `<>:"/\|?*`

// SafeName returns title as a single portable path element.
//
// Separators, reserved characters and control characters become '_'.
// Leading and trailing spaces and dots are trimmed. A title that reduces to
// nothing, ".", or ".." becomes "_".
func SafeName(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if unicode.IsControl(r) || strings.ContainsRune(invalidChars, r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	name := strings.Trim(b.String(), " .")
	if name == "" {
		return "_"
	}
	return name
}
