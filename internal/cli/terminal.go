package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/addrserve/pkg/address"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Width(10).
			Foreground(lipgloss.AdaptiveColor{Light: "#797593", Dark: "#908caa"})
	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	inferredStyle = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#ea9d34", Dark: "#f6c177"})
	missStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#b4637a", Dark: "#eb6f92"})
)

// renderRecord prints the non-empty fields of rec, one per line.
func renderRecord(w io.Writer, rec *address.Record) {
	v := rec.View()
	inferred := map[string]bool{}
	for _, level := range v.Inferred {
		inferred[level] = true
	}

	row := func(label, value string, isInferred bool) {
		if value == "" {
			return
		}
		style := valueStyle
		if isInferred {
			style = inferredStyle
			value += " (inferred)"
		}
		fmt.Fprintf(w, "%s%s\n", labelStyle.Render(label), style.Render(value))
	}

	if !v.Interpreted {
		fmt.Fprintln(w, missStyle.Render("region not resolved"))
	}
	row("province", regionValue(v.Province, v.ProvinceID), inferred["province"])
	row("city", regionValue(v.City, v.CityID), inferred["city"])
	row("county", regionValue(v.County, v.CountyID), inferred["county"])
	row("towns", strings.Join(v.Towns, " "), false)
	row("village", v.Village, false)
	row("road", strings.TrimSpace(v.Road+" "+v.RoadNum), false)
	row("building", v.BuildingNum, false)
	row("rest", v.Text, false)
	fmt.Fprintln(w)
}

func regionValue(name string, id int64) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%s (%d)", name, id)
}
