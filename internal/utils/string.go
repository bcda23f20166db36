package utils

import (
	"strings"
	"unicode/utf8"
)

// SplitAliases splits a stored alias list on '|', ';', ',' and their
// Chinese forms, trimming blanks and dropping duplicates.
func SplitAliases(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '|', ';', ',', '；', '，', '、':
			return true
		}
		return false
	})
	seen := NewSeenFilter()
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" && seen.ShouldInclude(f) {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// TruncateRunes cuts s to at most n runes. n <= 0 means no limit.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// FirstRune returns the first rune of s, or utf8.RuneError when s is empty.
func FirstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
