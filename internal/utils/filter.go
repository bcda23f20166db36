package utils

import (
	"strings"
	"unicode"
)

// Punctuation dropped from addresses. Brackets, '-' and '#' are kept since
// later stages read them.
const noiseChars = "`~!@$%^&*_=+|\\;:'\",.<>?/，。、；：？！…·“”‘’《》〈〉〔〕"

// IsNoise reports whether r carries no address information.
func IsNoise(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(noiseChars, r)
}

// StripNoise removes every noise rune from s.
func StripNoise(s string) string {
	return strings.Map(func(r rune) rune {
		if IsNoise(r) {
			return -1
		}
		return r
	}, s)
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsHan reports whether s has at least one Chinese character.
func ContainsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// IsRepetitive checks if a string is one character repeated three times or more.
func IsRepetitive(s string) bool {
	runes := []rune(s)
	if len(runes) <= 2 {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}

// IsValidInput reports whether s is worth parsing as an address.
func IsValidInput(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || IsOnlyNumbers(s) || IsRepetitive(s) {
		return false
	}
	return ContainsHan(s)
}
