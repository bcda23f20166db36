package region_test

import (
	"testing"

	"github.com/bastiangx/addrserve/internal/fixture"
	"github.com/bastiangx/addrserve/pkg/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalogFixture(t *testing.T) {
	cat, err := region.NewCatalog(fixture.Records())
	require.NoError(t, err)

	assert.Equal(t, int64(1), cat.Root().ID)
	assert.Equal(t, len(fixture.Records()), cat.Len())

	qhd := cat.Get(130300)
	require.NotNil(t, qhd)
	assert.Equal(t, "秦皇岛市", qhd.Name)
	assert.Equal(t, int64(130000), cat.Parent(qhd).ID)
	assert.Nil(t, cat.Parent(cat.Root()))
	assert.Nil(t, cat.Get(999999))

	children := cat.Children(130300)
	require.Len(t, children, 2)
	assert.Equal(t, int64(130302), children[0].ID)
	assert.Equal(t, int64(130322), children[1].ID)
}

func TestWalkIsPreOrderByID(t *testing.T) {
	cat := fixture.Catalog()

	var ids []int64
	cat.Walk(func(r *region.Region) bool {
		ids = append(ids, r.ID)
		return true
	})
	require.Len(t, ids, cat.Len())
	assert.Equal(t, []int64{1, 110000, 110100, 110105, 130000, 130300, 130302, 130322, 130322100}, ids[:9])

	var provinces []int64
	cat.Walk(func(r *region.Region) bool {
		if r.Type.IsProvinceLike() {
			provinces = append(provinces, r.ID)
			return false
		}
		return true
	})
	assert.Equal(t, []int64{110000, 130000, 220000, 350000, 370000, 440000, 610000, 630000, 650000}, provinces)
}

func TestAliasesSortedLongestFirst(t *testing.T) {
	cat, err := region.NewCatalog([]region.Record{
		{ID: 1, Type: region.Country, Name: "中国"},
		{ID: 632800, ParentID: 1, Type: region.City, Name: "海西蒙古族藏族自治州", Alias: []string{"海西", "", "海西州", "海西", "海西蒙古族藏族自治州"}},
	})
	require.NoError(t, err)

	r := cat.Get(632800)
	assert.Equal(t, []string{"海西州", "海西"}, r.Alias)
	assert.Equal(t, []string{"海西蒙古族藏族自治州", "海西州", "海西"}, r.Names())
}

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name    string
		records []region.Record
		wantErr error
	}{
		{
			name:    "empty",
			wantErr: region.ErrEmptyCatalog,
		},
		{
			name: "no root",
			records: []region.Record{
				{ID: 130000, ParentID: 130000, Type: region.Province, Name: "河北省"},
			},
			wantErr: region.ErrNoRoot,
		},
		{
			name: "two roots",
			records: []region.Record{
				{ID: 1, Type: region.Country, Name: "中国"},
				{ID: 2, Type: region.Country, Name: "中华"},
			},
			wantErr: region.ErrMultipleRoots,
		},
		{
			name: "duplicate id",
			records: []region.Record{
				{ID: 1, Type: region.Country, Name: "中国"},
				{ID: 130000, ParentID: 1, Type: region.Province, Name: "河北省"},
				{ID: 130000, ParentID: 1, Type: region.Province, Name: "河北"},
			},
			wantErr: region.ErrDuplicateID,
		},
		{
			name: "unknown parent",
			records: []region.Record{
				{ID: 1, Type: region.Country, Name: "中国"},
				{ID: 130300, ParentID: 130000, Type: region.City, Name: "秦皇岛市"},
			},
			wantErr: region.ErrUnknownParent,
		},
		{
			name: "province under city",
			records: []region.Record{
				{ID: 1, Type: region.Country, Name: "中国"},
				{ID: 130300, ParentID: 1, Type: region.City, Name: "秦皇岛市"},
				{ID: 130000, ParentID: 130300, Type: region.Province, Name: "河北省"},
			},
			wantErr: region.ErrRankOrder,
		},
		{
			name: "cycle detached from root",
			records: []region.Record{
				{ID: 1, Type: region.Country, Name: "中国"},
				{ID: 300, ParentID: 301, Type: region.County, Name: "甲县"},
				{ID: 301, ParentID: 300, Type: region.County, Name: "乙县"},
			},
			wantErr: region.ErrUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := region.NewCatalog(tt.records)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCountyReclassificationAllowed(t *testing.T) {
	_, err := region.NewCatalog([]region.Record{
		{ID: 1, Type: region.Country, Name: "中国"},
		{ID: 650000, ParentID: 1, Type: region.Province, Name: "新疆维吾尔自治区"},
		{ID: 659002, ParentID: 650000, Type: region.CityLevelCounty, Name: "阿拉尔市"},
		{ID: 659003, ParentID: 659002, Type: region.County, Name: "某县"},
		{ID: 659004, ParentID: 659003, Type: region.CityLevelCounty, Name: "某市"},
	})
	assert.NoError(t, err)
}

func TestRecordsRoundTrip(t *testing.T) {
	cat := fixture.Catalog()
	again, err := region.NewCatalog(cat.Records())
	require.NoError(t, err)
	assert.Equal(t, cat.Records(), again.Records())
}
