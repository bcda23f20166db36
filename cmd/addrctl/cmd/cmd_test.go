package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/bastiangx/addrserve/internal/fixture"
	"github.com/bastiangx/addrserve/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), errOut.String())
	return out.String(), errOut.String()
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("ADDRSERVE_CATALOG", "")
	t.Setenv("ADDRSERVE_PG_DSN", "")
	t.Setenv("ADDRSERVE_REDIS_ADDR", "")

	var buf bytes.Buffer
	require.NoError(t, catalog.WriteTSV(&buf, fixture.Records()))
	path := filepath.Join(dir, "regions.tsv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestCatalogImportAndStats(t *testing.T) {
	tsv := setup(t)
	dir := filepath.Dir(tsv)

	for _, name := range []string{"regions.snap", "regions.db"} {
		out := filepath.Join(dir, name)
		stdout, _ := execute(t, "", "catalog", "import", tsv, out)
		assert.Contains(t, stdout, fmt.Sprintf("wrote %d regions", fixture.Catalog().Len()))

		stdout, _ = execute(t, "", "catalog", "stats", out, "--json")
		var stats catalogStats
		require.NoError(t, json.Unmarshal([]byte(stdout), &stats))
		assert.Equal(t, fixture.Catalog().Len(), stats.Regions)
		assert.Equal(t, 8, stats.ByType["province"])
		assert.Equal(t, 1, stats.ByType["province_city1"])
		assert.Equal(t, 1, stats.ByType["city_county"])
		assert.Positive(t, stats.Ambiguous)
	}
	statsJSON = false
}

func TestParseLines(t *testing.T) {
	tsv := setup(t)
	input := "山东青岛市南区宁德路金梦花园\n\n金梦花园3栋\n广州从化区温泉镇新田村\n"

	stdout, stderr := execute(t, input, "parse", "--catalog", tsv, "-w", "2")
	assert.Contains(t, stderr, "parsed 3 addresses: 2 interpreted, 1 not interpreted")

	var lines []parsedLine
	for _, raw := range strings.Split(strings.TrimSpace(stdout), "\n") {
		var pl parsedLine
		require.NoError(t, json.Unmarshal([]byte(raw), &pl))
		lines = append(lines, pl)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Line < lines[j].Line })
	require.Len(t, lines, 3)

	assert.Equal(t, 1, lines[0].Line)
	assert.Equal(t, int64(370202), lines[0].CountyID)
	assert.Equal(t, "宁德路", lines[0].Road)

	assert.Equal(t, 3, lines[1].Line, "blank lines keep numbering")
	assert.False(t, lines[1].Interpreted)

	assert.Equal(t, 4, lines[2].Line)
	assert.Equal(t, []string{"province"}, lines[2].Inferred)
}
