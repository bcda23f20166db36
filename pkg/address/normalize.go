package address

import (
	"regexp"
	"strings"

	"github.com/bastiangx/addrserve/internal/utils"
)

// Runs of five or more digits are phone or tracking numbers.
var longDigits = regexp.MustCompile(`[0-9]{5,}`)

// Innermost bracket pair of any supported kind.
var bracketPair = regexp.MustCompile(`\(([^()\[\]{}【】「」]*)\)|\[([^()\[\]{}【】「」]*)\]|\{([^()\[\]{}【】「」]*)\}|【([^()\[\]{}【】「」]*)】|「([^()\[\]{}【】「」]*)」`)

// normalize prepares raw input for matching: ASCII widths, no punctuation or
// whitespace, no long digit runs, at most maxLength runes.
func normalize(raw string, maxLength int) string {
	s := utils.NormalizeWidth(raw)
	s = utils.StripNoise(s)
	s = longDigits.ReplaceAllString(s, "")
	return utils.TruncateRunes(s, maxLength)
}

// extractBrackets removes bracketed annotations from text, innermost first,
// and returns the remaining text with the non-empty contents in the order
// they were removed. Unbalanced brackets are dropped.
func extractBrackets(text string) (string, []string) {
	var notes []string
	for {
		loc := bracketPair.FindStringSubmatchIndex(text)
		if loc == nil {
			break
		}
		for g := 1; g < len(loc)/2; g++ {
			if start := loc[2*g]; start >= 0 && loc[2*g+1] > start {
				notes = append(notes, text[start:loc[2*g+1]])
				break
			}
		}
		text = text[:loc[0]] + text[loc[1]:]
	}
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune("()[]{}【】「」", r) {
			return -1
		}
		return r
	}, text)
	return text, notes
}
