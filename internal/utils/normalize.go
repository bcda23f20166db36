package utils

import "golang.org/x/text/width"

// ToHalfWidth maps a full-width rune, such as ＡＢ１２ or the ideographic
// space, to its narrow form. Other runes are returned unchanged.
func ToHalfWidth(r rune) rune {
	p := width.LookupRune(r)
	if p.Kind() != width.EastAsianFullwidth {
		return r
	}
	if n := p.Narrow(); n != 0 {
		return n
	}
	return r
}

// NormalizeWidth folds s to canonical widths: full-width ASCII becomes ASCII,
// half-width CJK punctuation becomes its wide form.
func NormalizeWidth(s string) string {
	return width.Fold.String(s)
}
