package address

import (
	"regexp"
	"strings"
)

// Name body: Chinese characters that cannot start the next structural token.
const nameBody = `[^\P{Han}省市县区镇乡村路街道]`

var townPattern = regexp.MustCompile(`^` +
	`(?P<street>` + nameBody + `{2,6}(?:街道办事处|街道|街办))?` +
	`(?P<town>` + nameBody + `{1,5}镇)?` +
	`(?P<township>` + nameBody + `{1,5}乡)?` +
	`(?P<village>` + nameBody + `{1,6}(?:村委会|村委|村))?`)

// Text that may not directly follow each group. A village followed by 路 is
// a road named after it; a town followed by 路 likewise.
var (
	notAfterTown    = []string{"大街", "大道", "路", "街"}
	notAfterVillage = []string{"公路", "大街", "大道", "村", "委", "路", "街"}
)

var roadPattern = regexp.MustCompile(`^(?P<road>[^\P{Han}省市县区镇乡村]{1,10}?(?:大街|大道|公路|胡同|路|街|巷|弄))(?P<num>[0-9]+(?:-[0-9]+)?号)?`)

// Building patterns in priority order; the first that matches wins.
var buildingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[0-9A-Za-z]+(?:栋|幢|座|号楼|#楼|#)(?:[0-9A-Za-z]+单元)?(?:[0-9]+(?:层|楼))?(?:[0-9]+(?:室|号房|房))?`),
	regexp.MustCompile(`[0-9]+-[0-9]+(?:-[0-9]+)?(?:号|室)?`),
	regexp.MustCompile(`[0-9一二三四五六七八九十]+组[0-9]+号`),
}

// Leftover unit, floor and room tokens.
var residualPattern = regexp.MustCompile(`[0-9A-Za-z]+单元|[0-9]+(?:层|楼|室|号房)`)

type townMatch struct {
	street, town, township, village string
	end                             int
}

func (m townMatch) empty() bool { return m.end == 0 }

// matchTowns reads the street office, town, township and village at the
// head of text. A group followed by a forbidden token ends the match before
// that group.
func matchTowns(text string) townMatch {
	loc := townPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return townMatch{}
	}
	group := func(name string) (string, int, int) {
		i := townPattern.SubexpIndex(name)
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			return "", -1, -1
		}
		return text[start:end], start, end
	}

	var m townMatch
	if s, _, end := group("street"); s != "" {
		m.street, m.end = s, end
	}
	if s, _, end := group("town"); s != "" {
		if hasAnyPrefix(text[end:], notAfterTown) {
			return m
		}
		m.town, m.end = s, end
	}
	if s, _, end := group("township"); s != "" {
		m.township, m.end = s, end
	}
	if s, _, end := group("village"); s != "" {
		if hasAnyPrefix(text[end:], notAfterVillage) {
			return m
		}
		m.village, m.end = s, end
	}
	return m
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
