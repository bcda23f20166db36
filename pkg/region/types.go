// Package region models the administrative hierarchy used to resolve addresses:
// ranked region types, the immutable catalog tree and the province/city/county
// division produced by a parse.
package region

import (
	"fmt"
	"strconv"
	"strings"
)

// Type classifies a region. The underlying value is its rank: a larger rank
// is a more specific level of the hierarchy.
type Type int

const (
	Undefined          Type = 0
	Country            Type = 10
	Province           Type = 100
	ProvinceLevelCity1 Type = 150 // municipality, e.g. 北京市
	ProvinceLevelCity2 Type = 151 // the municipality's own "city" level
	City               Type = 200
	CityLevelCounty    Type = 250 // county-level city governed by the province
	County             Type = 300
	Street             Type = 450
	Town               Type = 460
	Village            Type = 500
	PlatformSpecial    Type = 600
)

var typeNames = map[Type]string{
	Undefined:          "undefined",
	Country:            "country",
	Province:           "province",
	ProvinceLevelCity1: "province_city1",
	ProvinceLevelCity2: "province_city2",
	City:               "city",
	CityLevelCounty:    "city_county",
	County:             "county",
	Street:             "street",
	Town:               "town",
	Village:            "village",
	PlatformSpecial:    "platform",
}

// Rank returns the specificity of t.
func (t Type) Rank() int { return int(t) }

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// IsProvinceLike reports whether t sits at the province level.
func (t Type) IsProvinceLike() bool {
	return t == Province || t == ProvinceLevelCity1
}

// IsCityLike reports whether t sits at the city level.
func (t Type) IsCityLike() bool {
	return t == City || t == ProvinceLevelCity2
}

// IsCountyLike reports whether t sits at the county level. CityLevelCounty is
// both a city and a county.
func (t Type) IsCountyLike() bool {
	return t == County || t == CityLevelCounty
}

// ParseType decodes a type from its storage form, either the name returned by
// String or the numeric rank.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Undefined, fmt.Errorf("unknown region type %q", s)
	}
	t := Type(n)
	if _, ok := typeNames[t]; !ok {
		return Undefined, fmt.Errorf("unknown region type rank %d", n)
	}
	return t, nil
}
