package sanitizer

import (
	"strings"
	"unicode"
)

// CollapseSpace trims s and folds every run of whitespace into one ASCII space.
// Non-breaking and zero width spaces pasted from spreadsheets count as whitespace.
func CollapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\u200b'
}

// NormalizeColumnName is applied to header cells and to column names in a mapping,
// so "Invoice  No " in a sheet matches "Invoice No" typed by the user.
func NormalizeColumnName(name string) string {
	return CollapseSpace(strings.TrimPrefix(name, "\ufeff"))
}
